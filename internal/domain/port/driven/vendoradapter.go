package driven

import (
	"context"

	"github.com/ericfisherdev/routergate/internal/domain/model"
)

// VendorAdapter executes calls against one appliance's management API.
// Adapters are built per call and never shared between requests.
type VendorAdapter interface {
	Vendor() model.VendorTag
	DefaultTestPath() string

	// Execute performs req and reports every outcome, including transport
	// failures, as a ProxyResult.
	Execute(ctx context.Context, req model.ProxyRequest) model.ProxyResult

	// TestConnection is Execute against DefaultTestPath with GET.
	TestConnection(ctx context.Context) model.ProxyResult
}

// AdapterFactory builds a VendorAdapter for a validated profile.
type AdapterFactory interface {
	// Supports reports whether tag has a registered adapter variant.
	Supports(tag model.VendorTag) bool

	// NewAdapter constructs a fresh adapter for profile.Vendor.
	NewAdapter(profile model.ConnectionProfile) (VendorAdapter, error)
}
