// Package e2e holds the browser acceptance suite for the demo page. The tests
// carry the playwright build tag: go test -tags playwright ./tests/e2e/...
package e2e
