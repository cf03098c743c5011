// Package variables holds the case-insensitive variable store shared by a
// deployment run and the placeholder resolver that expands $(name) and
// %name% tokens against it.
package variables
