// Package actionize validates form submissions against a schema and drives
// them through a small form state machine.
//
// Two pieces:
//
//   - Build wraps a schema and a handler into an Action. The Action turns the
//     submitted FormData into a map, parses it with the schema and only then
//     calls the handler. A failed parse comes back as a *ValidationError of kind
//     FailureJoined.
//   - Controller binds an ObjectSchema and an Action to live fields. It keeps
//     values, per-field errors, the touched set and the pending flag of
//     in-flight submissions, and hands renderers a Snapshot on every change.
//
// Design policy:
//   - Keep the public surface in the root package; schema builders live in dsl/,
//     date codecs in codec/, cross-field rules in rules/ and YAML form
//     definitions in formdef/.
//   - Validation failures are Issues (JSON Pointer path, code, message) and are
//     surfaced either per field or joined, never both.
//   - Submissions run in a Transition and cannot be cancelled once started.
//
// Typical usage:
//
//	schema := dsl.Object().
//	    Field("name", dsl.String().Min(2)).Required().
//	    MustBuild()
//	action := actionize.Build[map[string]any, Greeting](schema, greet)
//	ctrl, err := actionize.New(actionize.BuildConfig[map[string]any](schema, action, Greeting{}), actionize.Options[Greeting]{
//	    OnSuccess: func(g Greeting) { fmt.Println(g.Message) },
//	})
//
//	name := ctrl.Register("name")
//	name.OnChange(ctx, "Alice")
//	name.OnBlur(ctx)
//	ctrl.FormAction(ctx, actionize.FormDataFromValues(r.PostForm))
package actionize
