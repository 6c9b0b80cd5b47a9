// Package driver provides the Driver aggregate: the minimal view of a driver the
// dispatch core needs, namely identity, display name and employment type. The
// employment type selects the compensation scheme used when a job is assigned.
package driver
