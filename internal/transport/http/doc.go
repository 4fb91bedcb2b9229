// Package http implements the JSON API of the dashboard. Handlers stay thin:
// they parse and validate the request, call the dashboard service and render
// the result. Every error is answered as an RFC 7807 problem through
// errors.ErrorHandler.
//
// # Routes
//
//	GET  /api/health            liveness
//	GET  /api/health/ready      per dataset cache state
//	GET  /api/orders            ?subsidiary=&period=&start=&end=
//	GET  /api/payouts           same query
//	GET  /api/staff             same query, metrics over the window
//	GET  /api/summary           summaries and KPIs against the previous window
//	GET  /api/alerts            ?subsidiary=
//	GET  /api/weeks             Monday to Sunday weeks of the window
//	POST /api/refresh           drop the cache and refetch
//	GET  /api/rules             classifier rules
//	POST /api/rules/{subsidiary} add or remove a rule value
//	POST /api/classify          explain the subsidiary of an ad-hoc row
package http
