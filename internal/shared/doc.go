// Package shared holds code used by several packages that belongs to none
// of them. Today that is only testutil: log capture and sample vendor files
// for tests.
package shared
