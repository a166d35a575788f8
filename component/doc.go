// Package component defines the lifecycle contract for long-lived resources
// such as scheduler worker pools.
//
// A Component is acquired with Start and released with Stop. The Registry
// starts components in registration order and stops them in reverse, so a
// pool registered before the pipelines that use it outlives them.
package component
