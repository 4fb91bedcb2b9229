// Package services orchestrates the dashboard pipeline. It pulls raw rows from
// the source cache, normalizes and classifies them, applies the selected time
// window and hands aggregates to the transport layer.
package services
