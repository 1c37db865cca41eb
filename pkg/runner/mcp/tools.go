package mcp

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"tableflip.dev/somnium/pkg/dream"
)

func registerTools(srv *server.MCPServer, svc *Service) {
	registerListDreamsTool(srv, svc)
	registerGetDreamTool(srv, svc)
	registerListCollectionsTool(srv, svc)
	registerCreateCollectionTool(srv, svc)
	registerToggleFavoriteTool(srv, svc)
	registerSetCollectionTool(srv, svc)
	registerEditDreamTool(srv, svc)
	registerDeleteDreamTool(srv, svc)
	registerDreamStatsTool(srv, svc)
}

func registerListDreamsTool(srv *server.MCPServer, svc *Service) {
	tool := mcp.NewTool(
		"list_dreams",
		mcp.WithDescription("List dreams, newest first, in the journal, favorites or one collection."),
		mcp.WithString("view",
			mcp.Description("Which dreams to list."),
			mcp.Enum(string(ViewJournal), string(ViewFavorites), string(ViewCollection)),
		),
		mcp.WithString("collection",
			mcp.Description("Collection id, required when view is collection."),
		),
	)

	srv.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		view := View(request.GetString("view", string(ViewJournal)))
		collection := strings.TrimSpace(request.GetString("collection", ""))

		dreams, err := svc.ListDreams(ctx, view, collection)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		if len(dreams) == 0 {
			return mcp.NewToolResultText("No dreams found here."), nil
		}
		return toJSONResult(map[string]any{
			"view":   view,
			"count":  len(dreams),
			"dreams": dreams,
		})
	})
}

func registerGetDreamTool(srv *server.MCPServer, svc *Service) {
	tool := mcp.NewTool(
		"get_dream",
		mcp.WithDescription("Fetch a single dream with its interpretation."),
		mcp.WithString("id",
			mcp.Required(),
			mcp.Description("Dream identifier to fetch."),
		),
	)

	srv.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, err := request.RequireString("id")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		dto, err := svc.DreamByID(ctx, id)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return toJSONResult(dto)
	})
}

func registerListCollectionsTool(srv *server.MCPServer, svc *Service) {
	tool := mcp.NewTool(
		"list_collections",
		mcp.WithDescription("List collections with dream counts."),
	)

	srv.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		summaries, err := svc.ListCollections(ctx)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return toJSONResult(map[string]any{
			"collections": summaries,
			"count":       len(summaries),
		})
	})
}

func registerCreateCollectionTool(srv *server.MCPServer, svc *Service) {
	tool := mcp.NewTool(
		"create_collection",
		mcp.WithDescription("Create a collection. Premium only."),
		mcp.WithString("name",
			mcp.Required(),
			mcp.Description("Collection name."),
		),
	)

	srv.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		name, err := request.RequireString("name")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		summary, err := svc.CreateCollection(ctx, name)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return toJSONResult(summary)
	})
}

func registerToggleFavoriteTool(srv *server.MCPServer, svc *Service) {
	tool := mcp.NewTool(
		"toggle_favorite",
		mcp.WithDescription("Flip a dream's favorite mark. Premium only."),
		mcp.WithString("id",
			mcp.Required(),
			mcp.Description("Dream identifier."),
		),
	)

	srv.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, err := request.RequireString("id")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		dto, err := svc.ToggleFavorite(ctx, id)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return toJSONResult(dto)
	})
}

func registerSetCollectionTool(srv *server.MCPServer, svc *Service) {
	tool := mcp.NewTool(
		"set_collection",
		mcp.WithDescription("File a dream under a collection, or unfile it with an empty collection."),
		mcp.WithString("id",
			mcp.Required(),
			mcp.Description("Dream identifier."),
		),
		mcp.WithString("collection",
			mcp.Description("Collection id; empty removes the dream from its collection."),
		),
	)

	srv.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, err := request.RequireString("id")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		dto, err := svc.SetCollection(ctx, id, strings.TrimSpace(request.GetString("collection", "")))
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return toJSONResult(dto)
	})
}

func registerEditDreamTool(srv *server.MCPServer, svc *Service) {
	tool := mcp.NewTool(
		"edit_dream",
		mcp.WithDescription("Edit a dream's text, date, labels or lucidity. Omitted fields are kept."),
		mcp.WithString("id",
			mcp.Required(),
			mcp.Description("Dream identifier."),
		),
		mcp.WithString("content",
			mcp.Description("New dream text."),
		),
		mcp.WithString("date",
			mcp.Description("New date, RFC3339 or YYYY-MM-DD."),
		),
		mcp.WithString("labels",
			mcp.Description("Comma separated replacement labels; an empty string clears them."),
		),
		mcp.WithBoolean("lucid",
			mcp.Description("Whether the dream was lucid."),
		),
	)

	srv.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var args struct {
			ID      string    `json:"id"`
			Content *string   `json:"content"`
			Date    *string   `json:"date"`
			Labels  *string   `json:"labels"`
			Lucid   *bool     `json:"lucid"`
		}
		if err := request.BindArguments(&args); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid arguments: %v", err)), nil
		}

		opts := EditOptions{
			ID:      args.ID,
			Content: args.Content,
			IsLucid: args.Lucid,
		}
		if args.Labels != nil {
			labels := dream.NormalizeLabels(strings.Split(*args.Labels, ","))
			opts.Labels = &labels
		}
		if args.Date != nil && strings.TrimSpace(*args.Date) != "" {
			when, err := dream.ParseTime(*args.Date)
			if err != nil {
				return mcp.NewToolResultError(fmt.Sprintf("invalid date value: %v", err)), nil
			}
			opts.Date = &when
		}

		dto, err := svc.EditDream(ctx, opts)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return toJSONResult(dto)
	})
}

func registerDeleteDreamTool(srv *server.MCPServer, svc *Service) {
	tool := mcp.NewTool(
		"delete_dream",
		mcp.WithDescription("Delete a dream permanently."),
		mcp.WithString("id",
			mcp.Required(),
			mcp.Description("Dream identifier."),
		),
	)

	srv.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, err := request.RequireString("id")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		if err := svc.DeleteDream(ctx, id); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return toJSONResult(map[string]any{
			"deleted":   id,
			"deletedAt": dream.FormatTime(time.Now()),
		})
	})
}

func registerDreamStatsTool(srv *server.MCPServer, svc *Service) {
	tool := mcp.NewTool(
		"dream_stats",
		mcp.WithDescription("Sentiment series, top moods and lucidity across the journal."),
	)

	srv.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		summary, err := svc.Stats(ctx)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return toJSONResult(summary)
	})
}

func toJSONResult(data any) (*mcp.CallToolResult, error) {
	result, err := mcp.NewToolResultJSON(data)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("marshal error: %v", err)), nil
	}
	return result, nil
}
