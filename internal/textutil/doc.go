// Package textutil holds small string helpers for turning feed text into
// filesystem names.
package textutil
