package errors

import "sort"

// ErrorTemplate defines a registered error type.
type ErrorTemplate struct {
	Category Category
	Message  string
	Detail   string
	DocURL   string
}

const docBase = "https://outlet.dev/docs/errors/"

// registry maps error codes to their templates.
var registry = map[string]ErrorTemplate{
	// ============================================
	// Config Errors (E100-E119)
	// ============================================

	"E100": {
		Category: CategoryConfig,
		Message:  "Config file not readable",
		Detail:   "outlet.json exists but could not be read.",
		DocURL:   docBase + "E100",
	},
	"E101": {
		Category: CategoryConfig,
		Message:  "Invalid config file",
		Detail:   "outlet.json is not valid JSON or has fields of the wrong type.",
		DocURL:   docBase + "E101",
	},
	"E102": {
		Category: CategoryConfig,
		Message:  "Unknown loader strategy",
		Detail:   "The loader strategy must be \"waterfall\" or \"parallel\".",
		DocURL:   docBase + "E102",
	},
	"E103": {
		Category: CategoryConfig,
		Message:  "Invalid loader concurrency",
		Detail:   "Concurrency must be zero (unlimited) or a positive number.",
		DocURL:   docBase + "E103",
	},
	"E104": {
		Category: CategoryConfig,
		Message:  "Unknown cache backend",
		Detail:   "The cache backend must be \"memory\" or \"redis\".",
		DocURL:   docBase + "E104",
	},
	"E105": {
		Category: CategoryConfig,
		Message:  "Invalid log settings",
		Detail:   "The log level must be debug, info, warn or error and the format text or json.",
		DocURL:   docBase + "E105",
	},
	"E106": {
		Category: CategoryConfig,
		Message:  "Missing redis address",
		Detail:   "The redis cache backend needs cache.addr.",
		DocURL:   docBase + "E106",
	},

	// ============================================
	// Manifest Errors (E200-E219)
	// ============================================

	"E200": {
		Category: CategoryManifest,
		Message:  "Manifest not found",
		Detail:   "The route manifest file does not exist or could not be read.",
		DocURL:   docBase + "E200",
	},
	"E201": {
		Category: CategoryManifest,
		Message:  "Manifest syntax error",
		Detail:   "The route manifest is not valid YAML.",
		DocURL:   docBase + "E201",
	},
	"E202": {
		Category: CategoryManifest,
		Message:  "Manifest has no routes",
		Detail:   "A manifest must declare at least one route under \"routes\".",
		DocURL:   docBase + "E202",
	},
	"E203": {
		Category: CategoryManifest,
		Message:  "Invalid handler",
		Detail:   "A loader or action must set exactly one of data or throw.",
		DocURL:   docBase + "E203",
	},
	"E204": {
		Category: CategoryManifest,
		Message:  "Invalid thrown status",
		Detail:   "Thrown responses must use an HTTP status between 400 and 599.",
		DocURL:   docBase + "E204",
	},

	// ============================================
	// Route Definition Errors (E300-E319)
	// ============================================

	"E300": {
		Category: CategoryRoute,
		Message:  "Invalid route definition",
		DocURL:   docBase + "E300",
	},
	"E301": {
		Category: CategoryRoute,
		Message:  "Splat segment is not last",
		Detail:   "A \"*\" segment can only appear at the end of a path.",
		DocURL:   docBase + "E301",
	},
	"E302": {
		Category: CategoryRoute,
		Message:  "Splat route has children",
		Detail:   "A route ending in \"*\" matches every remaining segment, so children could never match.",
		DocURL:   docBase + "E302",
	},
	"E303": {
		Category: CategoryRoute,
		Message:  "Duplicate index route",
		Detail:   "A parent can have at most one index route.",
		DocURL:   docBase + "E303",
	},
	"E304": {
		Category: CategoryRoute,
		Message:  "Index route has a path",
		Detail:   "Index routes render at their parent's path and cannot declare their own.",
		DocURL:   docBase + "E304",
	},
	"E305": {
		Category: CategoryRoute,
		Message:  "Index route has children",
		Detail:   "Index routes are leaves.",
		DocURL:   docBase + "E305",
	},
	"E306": {
		Category: CategoryRoute,
		Message:  "Duplicate route id",
		Detail:   "Route ids must be unique across the tree.",
		DocURL:   docBase + "E306",
	},
	"E307": {
		Category: CategoryRoute,
		Message:  "Absolute path outside parent",
		Detail:   "An absolute child path must begin with its parent's full path.",
		DocURL:   docBase + "E307",
	},
	"E308": {
		Category: CategoryRoute,
		Message:  "Invalid path segment",
		DocURL:   docBase + "E308",
	},
	"E309": {
		Category: CategoryRoute,
		Message:  "Reserved route id",
		Detail:   "The id is reserved for the built-in root boundary.",
		DocURL:   docBase + "E309",
	},

	// ============================================
	// Server and CLI Errors (E400-E419)
	// ============================================

	"E400": {
		Category: CategoryServer,
		Message:  "Server failed to start",
		DocURL:   docBase + "E400",
	},
	"E401": {
		Category: CategoryServer,
		Message:  "Cache backend unavailable",
		Detail:   "The loader data cache could not be reached.",
		DocURL:   docBase + "E401",
	},
	"E410": {
		Category: CategoryCLI,
		Message:  "Invalid form field",
		Detail:   "Form fields are passed as key=value.",
		DocURL:   docBase + "E410",
	},
}

// GetAllCodes returns all registered error codes in order.
func GetAllCodes() []string {
	codes := make([]string, 0, len(registry))
	for code := range registry {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// GetTemplate returns the template for an error code.
func GetTemplate(code string) (ErrorTemplate, bool) {
	t, ok := registry[code]
	return t, ok
}

// Register adds a new error template to the registry.
func Register(code string, template ErrorTemplate) {
	registry[code] = template
}
