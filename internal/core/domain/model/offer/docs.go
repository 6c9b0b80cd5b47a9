// Package offer holds the Offer entity: the proposal of one job to exactly one
// candidate driver, with its own status independent of the job's.
//
// An offer starts Pending and resolves to Accepted, Declined or Expired. The one later
// move is Expired to Declined, when the driver answers after the job went to someone
// else. Resolved offers never return to Pending. Offers are written only while their job's
// row lock is held; the package itself is free of I/O.
package offer
