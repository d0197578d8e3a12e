// Package framework contains the low-level implementation of test harness infrastructure
// that can be reused for different kinds of end-to-end checks.
//
// The general model is:
//
// 1. The test harness talks to a running system under test purely over HTTP. It knows the
// base URL of the gateway and of every service that exposes a health resource (see the
// harness subpackage).
//
// 2. There is a general notion of a test scope which is similar to Go's *testing.T,
// allowing pieces of test logic to be associated with a test identifier and to accumulate
// success/failure results (see the ldtest subpackage).
//
// 3. Each test scope can be traced, so that requests made on behalf of a test can be
// correlated with what the services themselves record (see the tracing subpackage).
//
// The domain-specific code that knows what is being tested is responsible for deciding which
// requests to make and what to assert about the responses.
package framework
