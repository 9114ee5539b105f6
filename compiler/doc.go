/*

Process of compilation

Container File (irfile) ->
	unmarshal ->
Package (ir, symbolic or resolved tier) ->
	verify ->
	inline ->
	fold ->
Optimized Package ->
	format ->
Canonical Text
	marshal ->
Container File

*/
package compiler
