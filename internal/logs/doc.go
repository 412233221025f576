// Package logs reads the mikanto.log file written when paths.log_dir is set.
//
// Last returns the final lines with bounded memory; Follow polls the file
// from an offset and hands each appended line to a callback until the
// context ends. "mikanto logs" is built on both.
package logs
