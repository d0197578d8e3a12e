// Package systemtests contains the end-to-end checks themselves and their supporting API.
//
// Infrastructure that is not specific to the order domain, such as making bounded requests to
// the services and running scenarios, is in the lower-level framework packages.
package systemtests
