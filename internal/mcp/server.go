package mcp

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/maartenverheul/Trek/internal/models"
	"github.com/maartenverheul/Trek/internal/store"
)

// Store is the subset of the data layer the MCP tools read from.
type Store interface {
	GetUserByName(ctx context.Context, name string) (*models.User, error)
	ListMaps(ctx context.Context, userID int) ([]models.Map, error)
	ListMarkers(ctx context.Context, mapID int) ([]models.Marker, error)
}

// Server exposes read-only map and marker tools over the MCP protocol.
type Server struct {
	store Store
}

func NewServer(s Store) *Server {
	return &Server{store: s}
}

func (s *Server) listMapsHandler(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	username, err := request.RequireString("username")
	if err != nil {
		return mcp.NewToolResultError("username is required"), nil
	}

	user, err := s.store.GetUserByName(ctx, username)
	if err == store.ErrNotFound {
		return mcp.NewToolResultError("user not found"), nil
	} else if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("database error: %v", err)), nil
	}

	maps, err := s.store.ListMaps(ctx, user.ID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("database error: %v", err)), nil
	}

	if len(maps) == 0 {
		return mcp.NewToolResultText("No maps found for this user."), nil
	}

	var lines []string
	for _, m := range maps {
		line := fmt.Sprintf("[%d] %s", m.ID, m.Title)
		if m.Description != nil && *m.Description != "" {
			line += " - " + *m.Description
		}
		lines = append(lines, line)
	}
	return mcp.NewToolResultText(fmt.Sprintf("Found %d maps:\n%s", len(maps), strings.Join(lines, "\n"))), nil
}

func (s *Server) listMarkersHandler(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	username, err := request.RequireString("username")
	if err != nil {
		return mcp.NewToolResultError("username is required"), nil
	}
	mapID, err := request.RequireInt("map_id")
	if err != nil {
		return mcp.NewToolResultError("map_id is required"), nil
	}

	user, err := s.store.GetUserByName(ctx, username)
	if err == store.ErrNotFound {
		return mcp.NewToolResultError("user not found"), nil
	} else if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("database error: %v", err)), nil
	}

	// The tool only serves maps owned by the named user.
	maps, err := s.store.ListMaps(ctx, user.ID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("database error: %v", err)), nil
	}
	owned := false
	for _, m := range maps {
		if m.ID == mapID {
			owned = true
			break
		}
	}
	if !owned {
		return mcp.NewToolResultError("map not found"), nil
	}

	markers, err := s.store.ListMarkers(ctx, mapID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("database error: %v", err)), nil
	}

	if len(markers) == 0 {
		return mcp.NewToolResultText("No markers found on this map."), nil
	}

	var lines []string
	for _, m := range markers {
		line := fmt.Sprintf("%s (%.6f, %.6f)", m.Title, m.Lat, m.Lng)
		if m.Rating != nil {
			line += fmt.Sprintf(" rated %d/10", *m.Rating)
		}
		if len(m.Visitations) > 0 {
			line += fmt.Sprintf(", visited %d times", len(m.Visitations))
		}
		if m.Notes != "" {
			line += "\n  notes: " + m.Notes
		}
		lines = append(lines, line)
	}
	return mcp.NewToolResultText(fmt.Sprintf("Found %d markers:\n%s", len(markers), strings.Join(lines, "\n"))), nil
}

// HTTPServer wires the tools into a stateless streamable HTTP transport.
func (s *Server) HTTPServer() *server.StreamableHTTPServer {
	mcpServer := server.NewMCPServer("Trek", "1.0.0")

	listMaps := mcp.NewTool("list_maps",
		mcp.WithDescription("List a user's maps with their IDs and titles."),
		mcp.WithString("username", mcp.Required(), mcp.Description("The username whose maps to list")),
		mcp.WithIdempotentHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithOpenWorldHintAnnotation(false),
	)
	mcpServer.AddTool(listMaps, s.listMapsHandler)

	listMarkers := mcp.NewTool("list_markers",
		mcp.WithDescription("List the markers on one of a user's maps, with coordinates, ratings and notes."),
		mcp.WithString("username", mcp.Required(), mcp.Description("The username who owns the map")),
		mcp.WithNumber("map_id", mcp.Required(), mcp.Description("The map ID, as returned by list_maps")),
		mcp.WithIdempotentHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithOpenWorldHintAnnotation(false),
	)
	mcpServer.AddTool(listMarkers, s.listMarkersHandler)

	return server.NewStreamableHTTPServer(mcpServer, server.WithStateLess(true))
}
