// Package mcp provides the Model Context Protocol (MCP) server implementation
// for immoscope using mcp-go.
//
// This package implements an MCP server that allows AI assistants to query
// French real-estate market data and run investment analyses through a
// standardized protocol. The server exposes the resolver, the renovation cost
// adjuster and the investment analyzers as tools.
//
// # Implementation
//
// The package uses the mcp-go library (github.com/mark3labs/mcp-go).
//
// # Tools
//
// The server registers six tools:
//   - search_properties: listing estimates derived from resolved market data
//   - analyze_investment_opportunity: scored rental and/or flip analysis
//   - compare_investment_strategies: both strategies side by side with a
//     recommendation
//   - get_market_data: the raw price estimate with source and confidence
//   - get_property_summary: a compact sale/rent digest for a location
//   - get_renovation_costs: the regionally adjusted renovation tier table
//
// # Error Handling
//
// Domain errors (invalid input, no data available, source unavailable,
// insufficient data) are translated to MCP tool errors at the boundary.
// Nothing crosses the protocol as a panic, and a failed resolution never
// corrupts the market-data cache.
//
// # Usage
//
// The MCP server is typically started as a subprocess by AI assistants that
// support MCP integration. It can also be started manually for testing:
//
//	immoscope serve
//
// The server will read JSON-RPC requests from stdin and write responses to
// stdout until it receives EOF or is terminated. All logging goes to stderr
// because stdout is the transport.
//
// # Architecture
//
// The Server struct contains:
//   - config: application configuration with adapter endpoints and timeouts
//   - logger: application logger for debugging and audit
//   - resolver: the tiered market-data resolver (DVF, INSEE, proximity)
//   - adjuster: the regional renovation-cost adjuster
//   - rental / dealer: the investment analyzers
//   - generator: the listing estimate generator
//   - mcpServer: the underlying mcp-go server instance
//
// # References
//
// - MCP Specification: https://modelcontextprotocol.io/specification
// - mcp-go Library: https://github.com/mark3labs/mcp-go
package mcp
