// Package exporter writes dashboard views as CSV files.
//
// Files are written with a UTF-8 BOM so spreadsheet tools recognise the
// encoding. Amounts are formatted with two decimals and dates as YYYY-MM-DD
// in the dashboard location.
package exporter
