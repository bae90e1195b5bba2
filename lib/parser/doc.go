// Package parser reads tsched input documents and turns them into the typed
// values of the model package.
//
// Two formats are supported.
//
// Text (the default):
//
//	A, B, C, D;                      <- data item ids
//	t1, t2, t3, t4;                  <- transaction ids (upper cased)
//	8, 9, 1, 4;                      <- transaction timestamps
//	E_1 - r1(A) r4(A) w3(B) c1       <- one schedule plan per line
//	E_2 - w4(B) r1(B) c
//
// A plan line is split at its first '-' into id and operations. Operations
// are tokens of the form r<n>(<item>), w<n>(<item>) or c[<n>], where <n>
// refers to transaction T<n>. Anything between tokens is ignored. Blank lines
// are skipped.
//
// YAML:
//
//	items: [A, B, C, D]
//	transactions:
//	  - {id: T1, ts: 8}
//	  - {id: T2, ts: 9}
//	schedules:
//	  - id: E_1
//	    ops: r1(A) r2(A) c
//
// Errors returned while parsing a text document are *Error values that carry
// the 1-based line number they refer to.
package parser
