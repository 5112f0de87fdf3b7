// Package csvsource decodes the clip spreadsheet into raw records.
//
// Columns are located by header name, so their order is free and unknown
// columns are ignored. Values are passed through untouched; validation is the
// job of the music package.
package csvsource
