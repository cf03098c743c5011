// Package wildcard expands paths containing '*', '?' and '**' segments into
// concrete file paths.
//
// Every result is a Token pairing the file path with a suffix: the part of
// the path matched by wildcard directory segments, written with '/'. The
// deployment pipeline appends the suffix to the destination directory to
// replicate the source layout.
//
// Directory segments are processed left to right against a set of
// candidate directories:
//
//	**        every directory below each candidate, the candidate included
//	*.x, a?b  the matching children of each candidate
//	literal   appended to each candidate; right after ** it instead keeps
//	          only the candidates whose suffix ends with that name
//
// With expansion enabled, literal segments that follow a wildcard are also
// appended to the suffix.
package wildcard
