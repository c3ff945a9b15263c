// Package component manages the lifecycle of long-running parts of axin,
// such as the development server and the tracer provider.
//
// Components are registered with a Registry, started in registration order
// and stopped in reverse. Components may also implement Describable and
// RouteProvider so the serve command can print a startup summary.
package component
