// Package job provides the Job aggregate root of the relocation service: one vehicle
// transport order moving through a fixed lifecycle.
//
// The package includes:
//   - Job: identity, route, schedule, assignment and verification artefacts of a transport
//   - Status: the state machine enforcing the forward order of the lifecycle
//   - Vehicle: descriptor of the vehicle being relocated
//   - RescheduleRecord: one entry of the append-only reschedule history
//
// Key business rules:
//   - Status follows PENDINGPAID -> CREATED -> ASSIGNED -> PICKED_UP -> IN_PROGRESS ->
//     REQUEST_FINISH -> DELIVERED
//   - CANCELLED is reachable from every status except DELIVERED and CANCELLED
//   - A driver is set exactly while status is ASSIGNED or later (and not CANCELLED)
//   - startedAt is set exactly while status is IN_PROGRESS, REQUEST_FINISH or DELIVERED
//   - Pickup verification is accepted only within PickupWindow of the scheduled instant
//   - A finish request is rejected when the driver is more than FinishGeofenceKm from
//     the destination
//
// Aggregate methods never perform I/O. Notification intents are produced by the
// StateGuard domain service on top of them.
package job
