// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/AleutianAI/ReleaseScout/services/changelog"
	"github.com/AleutianAI/ReleaseScout/services/forge"
	"github.com/AleutianAI/ReleaseScout/services/llm"

	// --- OpenTelemetry imports ---
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

// ReleaseAggregator is the pipeline entry point the handlers call.
type ReleaseAggregator interface {
	Aggregate(ctx context.Context, ref forge.RepoRef) (changelog.AggregationResult, error)
}

// ReportGenerator produces the LLM upgrade report. Nil when no LLM
// backend is configured; the report endpoint then answers 503.
type ReportGenerator interface {
	Summarize(ctx context.Context, req llm.SummarizeRequest) (string, error)
}

// Server struct holds all dependencies
type Server struct {
	Aggregator ReleaseAggregator
	Reporter   ReportGenerator
}

// --- API Request/Response Structs ---

type AggregateRequest struct {
	RepoURL string `json:"repo_url" binding:"required"`
}

type ChangelogRequest struct {
	RepoURL string `json:"repo_url" binding:"required"`
	FromTag string `json:"from_tag" binding:"required"`
	ToTag   string `json:"to_tag" binding:"required"`
}

type ChangelogResponse struct {
	Repo            string `json:"repo"`
	FromTag         string `json:"from_tag"`
	ToTag           string `json:"to_tag"`
	ReleaseCount    int    `json:"release_count"`
	SourcedFromTags bool   `json:"sourced_from_tags"`
	Changelog       string `json:"changelog"`
}

type ReportResponse struct {
	Repo               string `json:"repo"`
	FromTag            string `json:"from_tag"`
	ToTag              string `json:"to_tag"`
	ReleaseCount       int    `json:"release_count"`
	HasMeaningfulNotes bool   `json:"has_meaningful_notes"`
	Report             string `json:"report"`
}

func initTracer() (func(context.Context), error) {
	ctx := context.Background()

	otelEndpoint := os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT")
	if otelEndpoint == "" {
		otelEndpoint = "releasescout-otel-collector:4317"
	}
	conn, err := grpc.NewClient(otelEndpoint,
		grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, err
	}
	traceExporter, err := otlptracegrpc.New(ctx, otlptracegrpc.WithGRPCConn(conn))
	if err != nil {
		return nil, err
	}
	res, err := resource.New(ctx,
		resource.WithAttributes(semconv.ServiceNameKey.String("release-radar-service")))
	if err != nil {
		return nil, err
	}
	bsp := sdktrace.NewBatchSpanProcessor(traceExporter)
	traceProvider := sdktrace.NewTracerProvider(
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
		sdktrace.WithResource(res),
		sdktrace.WithSpanProcessor(bsp))
	otel.SetTracerProvider(traceProvider)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(propagation.
		TraceContext{}, propagation.Baggage{}))

	return func(ctx context.Context) {
		ctx, cancel := context.WithTimeout(ctx, time.Second*5)
		defer cancel()
		if err := traceExporter.Shutdown(ctx); err != nil {
			slog.Error("failed to shutdown OTLP exporter", "error", err)
		}
	}, nil
}

// requestIDMiddleware tags every request so log lines from one analysis
// can be correlated.
func requestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		reqID := c.GetHeader("X-Request-ID")
		if reqID == "" {
			reqID = uuid.NewString()
		}
		c.Set("request_id", reqID)
		c.Writer.Header().Set("X-Request-ID", reqID)
		c.Next()
	}
}

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cleanup, err := initTracer()
	if err != nil {
		log.Fatalf("failed to setup the OTLP tracer: %v", err)
	}
	defer cleanup(context.Background())

	forgeURL := os.Getenv("FORGE_API_URL")
	forgeToken := os.Getenv("FORGE_TOKEN")
	if forgeToken == "" {
		slog.Warn("FORGE_TOKEN not set, running with unauthenticated forge quota")
	}

	forgeClient := forge.NewClient(forgeURL, forgeToken, nil)
	server := &Server{
		Aggregator: changelog.NewAggregator(forgeClient),
	}

	// The report endpoint is optional: without a reachable LLM backend
	// the aggregation and changelog endpoints still work.
	llmClient, err := llm.NewClientFromEnv()
	if err != nil {
		slog.Warn("LLM backend unavailable, report endpoint disabled", "error", err)
	} else {
		server.Reporter = llm.NewSummarizer(llmClient)
	}

	router := gin.Default()
	router.Use(otelgin.Middleware("release-radar-service"))
	router.Use(requestIDMiddleware())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "service": "release-radar"})
	})

	router.POST("/v1/releases/aggregate", server.handleAggregate)
	router.POST("/v1/releases/changelog", server.handleChangelog)
	router.POST("/v1/releases/report", server.handleReport)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8002"
	}

	slog.Info("Starting release radar API server", "port", port)
	if err := router.Run(":" + port); err != nil {
		slog.Error("Server failed", "error", err)
		os.Exit(1)
	}
}

// handleAggregate returns the full annotated release history for one
// repository URL.
func (s *Server) handleAggregate(c *gin.Context) {
	var req AggregateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	ref, err := forge.ParseRepoURL(req.RepoURL)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid repository URL", "details": err.Error()})
		return
	}

	result, err := s.Aggregator.Aggregate(c.Request.Context(), ref)
	if err != nil {
		writeForgeError(c, err)
		return
	}

	slog.Info("Aggregation complete", "repo", ref.String(),
		"releases", len(result.Releases), "from_tags", result.SourcedFromTags)
	c.JSON(http.StatusOK, result)
}

// handleChangelog assembles the changelog for an inclusive version
// range.
func (s *Server) handleChangelog(c *gin.Context) {
	var req ChangelogRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	ref, result, slice, ok := s.selectSlice(c, req.RepoURL, req.FromTag, req.ToTag)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, ChangelogResponse{
		Repo:            ref.String(),
		FromTag:         req.FromTag,
		ToTag:           req.ToTag,
		ReleaseCount:    len(slice),
		SourcedFromTags: result.SourcedFromTags,
		Changelog:       changelog.Assemble(slice),
	})
}

// handleReport runs the whole pipeline and asks the LLM backend for an
// upgrade report.
func (s *Server) handleReport(c *gin.Context) {
	if s.Reporter == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "No LLM backend configured"})
		return
	}

	var req ChangelogRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	ref, result, slice, ok := s.selectSlice(c, req.RepoURL, req.FromTag, req.ToTag)
	if !ok {
		return
	}

	report, err := s.Reporter.Summarize(c.Request.Context(), llm.SummarizeRequest{
		Repo:      ref.String(),
		FromTag:   req.FromTag,
		ToTag:     req.ToTag,
		Changelog: changelog.Assemble(slice),
		Releases:  slice,
	})
	if err != nil {
		if errors.Is(err, llm.ErrNoReleaseData) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "No release data in the selected range", "details": err.Error()})
			return
		}
		slog.Error("Report generation failed", "repo", ref.String(), "error", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "Report generation failed", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, ReportResponse{
		Repo:               ref.String(),
		FromTag:            req.FromTag,
		ToTag:              req.ToTag,
		ReleaseCount:       len(slice),
		HasMeaningfulNotes: result.HasMeaningfulNotes,
		Report:             report,
	})
}

// selectSlice runs parse -> aggregate -> range selection and writes the
// error response itself when anything fails. ok=false means a response
// was already written.
func (s *Server) selectSlice(c *gin.Context, repoURL, fromTag, toTag string) (forge.RepoRef, changelog.AggregationResult, []changelog.Release, bool) {
	ref, err := forge.ParseRepoURL(repoURL)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid repository URL", "details": err.Error()})
		return forge.RepoRef{}, changelog.AggregationResult{}, nil, false
	}

	result, err := s.Aggregator.Aggregate(c.Request.Context(), ref)
	if err != nil {
		writeForgeError(c, err)
		return forge.RepoRef{}, changelog.AggregationResult{}, nil, false
	}

	slice := changelog.SelectRange(result.Releases, fromTag, toTag)
	if len(slice) == 0 {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "One or both tags were not found in the release history",
			"from":  fromTag, "to": toTag,
		})
		return forge.RepoRef{}, changelog.AggregationResult{}, nil, false
	}
	return ref, result, slice, true
}

// writeForgeError maps the forge error taxonomy onto HTTP statuses.
func writeForgeError(c *gin.Context, err error) {
	var rateErr *forge.RateLimitError
	var upErr *forge.UpstreamError
	switch {
	case errors.Is(err, forge.ErrRepoNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Repository not found", "details": err.Error()})
	case errors.As(err, &rateErr):
		c.JSON(http.StatusTooManyRequests, gin.H{"error": "Forge rate limit exceeded", "details": err.Error()})
	case errors.As(err, &upErr):
		c.JSON(http.StatusBadGateway, gin.H{"error": "Forge API error", "details": err.Error(), "status_code": upErr.StatusCode})
	default:
		slog.Error("Aggregation failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Aggregation failed", "details": err.Error()})
	}
}
