// Package billing exposes the subscription, quota, and payment services
// over HTTP as a mountable chi router.
package billing
