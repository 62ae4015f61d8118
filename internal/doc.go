// Package internal provides the engine that rewrites Go source files so that
// marked functions accept any argument convertible into their parameter
// types.
//
// A function is marked by a //argsinto line in its doc comment. For every
// parameter the engine adds a type parameter constrained to the types
// convertible into the declared type, and converts the argument back at the
// top of the body:
//
//	//argsinto
//	func Greet(name string) { ... }
//
// becomes
//
//	//nolint:revive,stylecheck
//	func Greet[__NAME interface{ ~string }](name __NAME) {
//		{
//			name := string(name)
//			...
//		}
//	}
//
// Key components:
//
// Engine: drives a file through directive discovery, lowering to the
// language-neutral syntax tree, transformation, raising back to Go, splicing
// into the original text, formatting and verification.
//
// Result: the rewritten content of one file.
//
// SourceCode: the lines of a file, used to render issues with snippets.
//
// Usage:
//
//	engine := internal.NewEngine(internal.Options{}, logger)
//	res, err := engine.Run("path/to/file.go")
//	if err != nil {
//	    // err is a types.Issue when the file cannot be rewritten
//	}
//	if err := engine.Write(res); err != nil {
//	    // handle error
//	}
//
// This package is intended for internal use within the tool and should not be
// imported by external packages.
package internal
