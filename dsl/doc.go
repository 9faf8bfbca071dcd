// Package dsl provides the schema builders used to declare forms.
//
// Overview
//   - Object(): declare a flat form object field by field, with required,
//     default, unknown-key and refine semantics.
//   - Primitives: String(), Enum(), Number(), Int(), Bool(). Form values
//     arrive as strings and are coerced by the non-string schemas.
//   - SchemaOf[T](s): adapt any actionize.Schema[T] (a codec, for example)
//     so it can be passed to Field.
//   - Bind[T](obj): project the parsed map onto a struct through json tags.
//
// Missing values
//
// A key that is not submitted is missing. For non-string schemas an empty or
// blank string is missing as well, since "" cannot be coerced to a number or a
// date. Missing fields take their Default when one is set; a Bool parses as
// false; otherwise a required field reports "required" and an optional one is
// left out of the result.
//
// Example
//
//	signup := dsl.Object().
//	    Field("email", dsl.String().Trim().Email()).Required().
//	    Field("password", dsl.String().Min(8)).Required().
//	    Field("confirm", dsl.String()).Required().
//	    Field("age", dsl.Int().Min(18)).Optional().
//	    Field("terms", dsl.Bool().True("You must accept the terms")).
//	    Refine("confirm", rules.Match("confirm", "password")).
//	    MustBuild()
//
// Unknown keys are stripped by default because browsers submit extra names
// (buttons, CSRF tokens). UnknownStrict reports them as unknown_key issues
// and exports additionalProperties=false.
package dsl
