// Package temporal connects the service to Temporal for background PDF
// acquisition.
//
// The API server uses AcquisitionClient to start PDFAcquisitionWorkflow by
// name; the worker binary registers the workflow from the workflows package
// and the activities from the activities package on a Worker.
//
// Workflow ids are derived from the paper id, so at most one acquisition per
// paper runs at a time. Client errors are *TemporalError values that also
// match the domain error sentinels (not found, already exists, service
// unavailable).
package temporal
