// Package spec binds declarative command-line patterns to handler
// functions and dispatches argument vectors against them.
//
// A Builder collects option declarations and pattern bindings, then
// Build compiles every pattern into shared flat grammar tables,
// validates handler arities by reflection, and proves the pattern set
// unambiguous. The resulting Spec is immutable; Process matches one
// argument vector, reports at most one diagnostic on failure, and runs
// exactly one handler on success.
//
//	s, err := spec.New(spec.WithName("calc")).
//		Declare(option.New("-v", "--verbose").Raise(&verbose)).
//		Bind("add <a:int> <b:int>", "add two integers", func(a, b int64) {
//			fmt.Println(a + b)
//		}).
//		Build()
//	if err != nil {
//		panic(err)
//	}
//	os.Exit(s.Process(os.Args))
//
// Options are order-free: a prescan lifts recognized option tokens out
// of the vector, and patterns mention options only to mark where they
// are meaningful. Option actions are staged during matching and commit
// only for the winning pattern.
//
// A pattern bound with the Delegate attribute may consume a proper
// prefix of the vector; its handler receives the remaining suffix as an
// Args view, typically forwarding it to a nested Spec's ProcessArgs.
package spec
