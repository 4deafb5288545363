// Package application contains use-case orchestration services.
package application

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ericfisherdev/routergate/internal/domain/model"
	"github.com/ericfisherdev/routergate/internal/domain/port/driven"
)

// ProxyGateway validates connection profiles and dispatches calls to the
// matching vendor adapter. It keeps no state between calls.
type ProxyGateway struct {
	factory driven.AdapterFactory
	logger  *slog.Logger
}

// NewProxyGateway creates a ProxyGateway.
func NewProxyGateway(factory driven.AdapterFactory, logger *slog.Logger) *ProxyGateway {
	return &ProxyGateway{factory: factory, logger: logger}
}

// Proxy executes req against the appliance described by profile using the
// adapter registered for vendorTag.
func (g *ProxyGateway) Proxy(ctx context.Context, vendorTag string, profile model.ConnectionProfile, req model.ProxyRequest) model.ProxyResult {
	profile, failed, ok := g.prepare(vendorTag, profile)
	if !ok {
		return failed
	}
	if strings.TrimSpace(req.Path) == "" {
		return validationResult(profile.Vendor, missing("path"))
	}

	return g.run(profile, func(a driven.VendorAdapter) model.ProxyResult {
		return a.Execute(ctx, req)
	})
}

// TestConnection probes the vendor's default read-only endpoint.
func (g *ProxyGateway) TestConnection(ctx context.Context, vendorTag string, profile model.ConnectionProfile) model.ProxyResult {
	profile, failed, ok := g.prepare(vendorTag, profile)
	if !ok {
		return failed
	}

	return g.run(profile, func(a driven.VendorAdapter) model.ProxyResult {
		return a.TestConnection(ctx)
	})
}

// prepare validates everything that can be checked without the network.
// Nothing is constructed until it passes.
func (g *ProxyGateway) prepare(vendorTag string, profile model.ConnectionProfile) (model.ConnectionProfile, model.ProxyResult, bool) {
	if strings.TrimSpace(vendorTag) == "" {
		return profile, validationResult("", missing("vendorTag")), false
	}

	tag, known := model.ParseVendorTag(vendorTag)
	if !known || !g.factory.Supports(tag) {
		res := model.FailedResult(tag, model.CodeUnsupportedVendor, fmt.Sprintf("unsupported vendor: %s", tag))
		res.SupportedVendors = model.SupportedVendors()
		return profile, res, false
	}
	profile.Vendor = tag

	switch {
	case strings.TrimSpace(profile.Host) == "":
		return profile, validationResult(tag, missing("endpoint")), false
	case strings.TrimSpace(profile.Username) == "":
		return profile, validationResult(tag, missing("user")), false
	case profile.Secret == "":
		return profile, validationResult(tag, missing("secret")), false
	}

	profile.Host = strings.TrimSpace(profile.Host)
	profile.Port = strings.TrimSpace(profile.Port)
	return profile, model.ProxyResult{}, true
}

// run builds a fresh adapter and converts any panic inside it into an
// INTERNAL_ERROR result.
func (g *ProxyGateway) run(profile model.ConnectionProfile, call func(driven.VendorAdapter) model.ProxyResult) (result model.ProxyResult) {
	defer func() {
		if v := recover(); v != nil {
			g.logger.Error("vendor adapter panicked", "vendor", string(profile.Vendor), "panic", v)
			result = model.FailedResult(profile.Vendor, model.CodeInternalError, "internal server error")
		}
	}()

	adapter, err := g.factory.NewAdapter(profile)
	if err != nil {
		g.logger.Error("build vendor adapter", "vendor", string(profile.Vendor), "error", err)
		return model.FailedResult(profile.Vendor, model.CodeInternalError, "internal server error")
	}

	return call(adapter)
}

func validationResult(tag model.VendorTag, verr *ValidationError) model.ProxyResult {
	res := model.FailedResult(tag, model.CodeValidationError, verr.Error())
	res.Field = verr.Field
	return res
}
