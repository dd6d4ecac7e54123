// Package expr compiles the CUE expressions used by scenario files.
//
// An expression sees the current item record as x:
//
//	x.age >= 18
//	{name: x.name, adult: x.age >= 18}
//	x.tags[0]
//
// Results are converted to the value model. Floats are rejected, as they
// are everywhere else in the module.
package expr
