// Package profile writes Go runtime profiles of a k2tf run.
//
// Profiles are selected by name with a repeatable flag and written as
// "<name>.pprof" files into one folder:
//
//	k2tf --profile=cpu,heap --profile-dir=/tmp/k2tf ./manifests
//
// The CPU profile covers the time between [Profiler.Start] and
// [Profiler.Stop]. Every other profile is a snapshot taken by Stop. Block and
// mutex sampling is only switched on while those profiles are requested.
package profile
