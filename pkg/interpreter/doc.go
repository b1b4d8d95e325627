// Package interpreter evaluates business-rule scripts by walking the AST
// produced by pkg/parser. Compile runs a script's top-level statements once
// and freezes the result into a runtime.Script; CallFunction then evaluates a
// declared function against a private copy of that script's globals, which
// makes concurrent calls on one script independent of each other.
package interpreter
