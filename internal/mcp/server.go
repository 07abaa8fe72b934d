package mcp

import (
	"fmt"

	"github.com/mark3labs/mcp-go/server"

	"immoscope/internal/adapters"
	"immoscope/internal/analysis"
	"immoscope/internal/config"
	"immoscope/internal/dataset"
	"immoscope/internal/listings"
	"immoscope/internal/logging"
	"immoscope/internal/market"
	"immoscope/internal/renovation"
)

// Server represents an MCP server instance using mcp-go.
type Server struct {
	config    *config.Config
	logger    *logging.AppLogger
	resolver  *market.Resolver
	adjuster  *renovation.Adjuster
	rental    *analysis.RentalAnalyzer
	dealer    *analysis.DealerAnalyzer
	generator *listings.Generator
	mcpServer *server.MCPServer
}

// NewServer creates a new MCP server instance. The domain components are not
// built until Start or InitializeComponents runs.
func NewServer(cfg *config.Config, logger *logging.AppLogger) *Server {
	return &Server{
		config: cfg,
		logger: logger,
	}
}

// Start initializes the domain components, registers the tools and serves the
// MCP protocol on stdio until the client disconnects.
func (s *Server) Start() error {
	s.logger.Info("Initializing MCP server")

	if err := s.initializeComponents(); err != nil {
		return err
	}

	s.mcpServer = server.NewMCPServer(
		"immoscope",
		s.config.Version,
		server.WithToolCapabilities(false),
	)
	s.registerTools()

	s.logger.Info("MCP server created, starting stdio communication")

	if err := server.ServeStdio(s.mcpServer); err != nil {
		return fmt.Errorf("MCP server failed: %w", err)
	}
	return nil
}

// Stop gracefully shuts down the MCP server.
func (s *Server) Stop() error {
	s.logger.Info("Stopping MCP server")
	// The mcp-go server handles cleanup when the stdio transport closes.
	return nil
}

// initializeComponents wires the dataset, adapters, resolver and analyzers
// from the configuration.
func (s *Server) initializeComponents() error {
	ds, err := s.loadDataset()
	if err != nil {
		return err
	}

	timeout := s.config.AdapterTimeout()
	geo := adapters.NewGeocodeClient(s.config.GeocodeBaseURL, timeout, s.logger)
	dvf := adapters.NewDVFClient(s.config.DVFBaseURL, timeout, s.logger)
	insee := adapters.NewINSEEClient(s.config.INSEEBaseURL, timeout, s.logger)

	s.resolver = market.NewResolver(ds, geo, dvf, insee, s.logger, market.ResolverOptions{
		CacheTTL: s.config.CacheTTL(),
	})
	s.adjuster = renovation.NewAdjuster(ds, s.logger)
	s.rental = analysis.NewRentalAnalyzer(ds, s.logger)
	s.dealer = analysis.NewDealerAnalyzer(ds, s.adjuster, s.logger)
	s.generator = listings.NewGenerator(s.resolver, s.logger)

	s.logger.Info("Domain components initialized",
		"locations", len(ds.Locations),
		"renovation_tiers", len(ds.RenovationTiers),
	)
	return nil
}

func (s *Server) loadDataset() (*dataset.Dataset, error) {
	if s.config.DatasetPath != "" {
		s.logger.Info("Loading dataset override", "path", s.config.DatasetPath)
		ds, err := dataset.LoadFile(s.config.DatasetPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load dataset override: %w", err)
		}
		return ds, nil
	}

	ds, err := dataset.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load bundled dataset: %w", err)
	}
	return ds, nil
}

// InitializeComponents builds the domain components without starting the
// stdio transport, for tests and debugging commands.
func (s *Server) InitializeComponents() error {
	return s.initializeComponents()
}
