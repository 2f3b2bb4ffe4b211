package api

import (
	"context"
	"net/http"
	"strings"

	"connectrpc.com/connect"
)

const (
	// SplitServiceName is the fully-qualified name of the SplitService service.
	SplitServiceName = "mealsplit.v1.SplitService"
	// SuggestServiceName is the fully-qualified name of the SuggestService service.
	SuggestServiceName = "mealsplit.v1.SuggestService"
)

// DefaultReadMaxBytes bounds the size of a request message. Handler options
// passed by the caller may override it.
const DefaultReadMaxBytes = 1 << 20

const (
	SplitServiceCalculateProcedure         = "/mealsplit.v1.SplitService/Calculate"
	SplitServiceAddParticipantProcedure    = "/mealsplit.v1.SplitService/AddParticipant"
	SplitServiceRemoveParticipantProcedure = "/mealsplit.v1.SplitService/RemoveParticipant"
	SplitServiceAddItemProcedure           = "/mealsplit.v1.SplitService/AddItem"
	SplitServiceEditItemProcedure          = "/mealsplit.v1.SplitService/EditItem"
	SplitServiceRemoveItemProcedure        = "/mealsplit.v1.SplitService/RemoveItem"
	SplitServiceToggleConsumerProcedure    = "/mealsplit.v1.SplitService/ToggleConsumer"
	SplitServiceExportImageProcedure       = "/mealsplit.v1.SplitService/ExportImage"

	SuggestServiceGuessItemProcedure    = "/mealsplit.v1.SuggestService/GuessItem"
	SuggestServiceSuggestItemsProcedure = "/mealsplit.v1.SuggestService/SuggestItems"
)

// SplitServiceHandler is implemented by the split server.
type SplitServiceHandler interface {
	Calculate(context.Context, *connect.Request[CalculateRequest]) (*connect.Response[CalculateResponse], error)
	AddParticipant(context.Context, *connect.Request[AddParticipantRequest]) (*connect.Response[MutationResponse], error)
	RemoveParticipant(context.Context, *connect.Request[RemoveParticipantRequest]) (*connect.Response[MutationResponse], error)
	AddItem(context.Context, *connect.Request[AddItemRequest]) (*connect.Response[MutationResponse], error)
	EditItem(context.Context, *connect.Request[EditItemRequest]) (*connect.Response[MutationResponse], error)
	RemoveItem(context.Context, *connect.Request[RemoveItemRequest]) (*connect.Response[MutationResponse], error)
	ToggleConsumer(context.Context, *connect.Request[ToggleConsumerRequest]) (*connect.Response[MutationResponse], error)
	ExportImage(context.Context, *connect.Request[ExportRequest]) (*connect.Response[ExportResponse], error)
}

// SuggestServiceHandler is implemented by the suggestion server.
type SuggestServiceHandler interface {
	GuessItem(context.Context, *connect.Request[SuggestRequest]) (*connect.Response[GuessResponse], error)
	SuggestItems(context.Context, *connect.Request[SuggestRequest]) (*connect.Response[SuggestResponse], error)
}

// NewSplitServiceHandler builds an HTTP handler from the service
// implementation. It returns the path on which to mount the handler.
func NewSplitServiceHandler(svc SplitServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = append([]connect.HandlerOption{WithCodec(), connect.WithReadMaxBytes(DefaultReadMaxBytes)}, opts...)
	routes := map[string]http.Handler{
		SplitServiceCalculateProcedure:         connect.NewUnaryHandler(SplitServiceCalculateProcedure, svc.Calculate, opts...),
		SplitServiceAddParticipantProcedure:    connect.NewUnaryHandler(SplitServiceAddParticipantProcedure, svc.AddParticipant, opts...),
		SplitServiceRemoveParticipantProcedure: connect.NewUnaryHandler(SplitServiceRemoveParticipantProcedure, svc.RemoveParticipant, opts...),
		SplitServiceAddItemProcedure:           connect.NewUnaryHandler(SplitServiceAddItemProcedure, svc.AddItem, opts...),
		SplitServiceEditItemProcedure:          connect.NewUnaryHandler(SplitServiceEditItemProcedure, svc.EditItem, opts...),
		SplitServiceRemoveItemProcedure:        connect.NewUnaryHandler(SplitServiceRemoveItemProcedure, svc.RemoveItem, opts...),
		SplitServiceToggleConsumerProcedure:    connect.NewUnaryHandler(SplitServiceToggleConsumerProcedure, svc.ToggleConsumer, opts...),
		SplitServiceExportImageProcedure:       connect.NewUnaryHandler(SplitServiceExportImageProcedure, svc.ExportImage, opts...),
	}
	return "/" + SplitServiceName + "/", router(routes)
}

// NewSuggestServiceHandler builds an HTTP handler from the service
// implementation. It returns the path on which to mount the handler.
func NewSuggestServiceHandler(svc SuggestServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = append([]connect.HandlerOption{WithCodec(), connect.WithReadMaxBytes(DefaultReadMaxBytes)}, opts...)
	routes := map[string]http.Handler{
		SuggestServiceGuessItemProcedure:    connect.NewUnaryHandler(SuggestServiceGuessItemProcedure, svc.GuessItem, opts...),
		SuggestServiceSuggestItemsProcedure: connect.NewUnaryHandler(SuggestServiceSuggestItemsProcedure, svc.SuggestItems, opts...),
	}
	return "/" + SuggestServiceName + "/", router(routes)
}

func router(routes map[string]http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h, ok := routes[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		h.ServeHTTP(w, r)
	})
}

// SplitServiceClient is a client for the mealsplit.v1.SplitService service.
type SplitServiceClient interface {
	Calculate(context.Context, *connect.Request[CalculateRequest]) (*connect.Response[CalculateResponse], error)
	AddParticipant(context.Context, *connect.Request[AddParticipantRequest]) (*connect.Response[MutationResponse], error)
	RemoveParticipant(context.Context, *connect.Request[RemoveParticipantRequest]) (*connect.Response[MutationResponse], error)
	AddItem(context.Context, *connect.Request[AddItemRequest]) (*connect.Response[MutationResponse], error)
	EditItem(context.Context, *connect.Request[EditItemRequest]) (*connect.Response[MutationResponse], error)
	RemoveItem(context.Context, *connect.Request[RemoveItemRequest]) (*connect.Response[MutationResponse], error)
	ToggleConsumer(context.Context, *connect.Request[ToggleConsumerRequest]) (*connect.Response[MutationResponse], error)
	ExportImage(context.Context, *connect.Request[ExportRequest]) (*connect.Response[ExportResponse], error)
}

// NewSplitServiceClient constructs a client for the SplitService. The baseURL
// is the scheme and host of the server, e.g. http://localhost:8080.
func NewSplitServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) SplitServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = append([]connect.ClientOption{WithCodec()}, opts...)
	return &splitServiceClient{
		calculate:         connect.NewClient[CalculateRequest, CalculateResponse](httpClient, baseURL+SplitServiceCalculateProcedure, opts...),
		addParticipant:    connect.NewClient[AddParticipantRequest, MutationResponse](httpClient, baseURL+SplitServiceAddParticipantProcedure, opts...),
		removeParticipant: connect.NewClient[RemoveParticipantRequest, MutationResponse](httpClient, baseURL+SplitServiceRemoveParticipantProcedure, opts...),
		addItem:           connect.NewClient[AddItemRequest, MutationResponse](httpClient, baseURL+SplitServiceAddItemProcedure, opts...),
		editItem:          connect.NewClient[EditItemRequest, MutationResponse](httpClient, baseURL+SplitServiceEditItemProcedure, opts...),
		removeItem:        connect.NewClient[RemoveItemRequest, MutationResponse](httpClient, baseURL+SplitServiceRemoveItemProcedure, opts...),
		toggleConsumer:    connect.NewClient[ToggleConsumerRequest, MutationResponse](httpClient, baseURL+SplitServiceToggleConsumerProcedure, opts...),
		exportImage:       connect.NewClient[ExportRequest, ExportResponse](httpClient, baseURL+SplitServiceExportImageProcedure, opts...),
	}
}

type splitServiceClient struct {
	calculate         *connect.Client[CalculateRequest, CalculateResponse]
	addParticipant    *connect.Client[AddParticipantRequest, MutationResponse]
	removeParticipant *connect.Client[RemoveParticipantRequest, MutationResponse]
	addItem           *connect.Client[AddItemRequest, MutationResponse]
	editItem          *connect.Client[EditItemRequest, MutationResponse]
	removeItem        *connect.Client[RemoveItemRequest, MutationResponse]
	toggleConsumer    *connect.Client[ToggleConsumerRequest, MutationResponse]
	exportImage       *connect.Client[ExportRequest, ExportResponse]
}

func (c *splitServiceClient) Calculate(ctx context.Context, req *connect.Request[CalculateRequest]) (*connect.Response[CalculateResponse], error) {
	return c.calculate.CallUnary(ctx, req)
}

func (c *splitServiceClient) AddParticipant(ctx context.Context, req *connect.Request[AddParticipantRequest]) (*connect.Response[MutationResponse], error) {
	return c.addParticipant.CallUnary(ctx, req)
}

func (c *splitServiceClient) RemoveParticipant(ctx context.Context, req *connect.Request[RemoveParticipantRequest]) (*connect.Response[MutationResponse], error) {
	return c.removeParticipant.CallUnary(ctx, req)
}

func (c *splitServiceClient) AddItem(ctx context.Context, req *connect.Request[AddItemRequest]) (*connect.Response[MutationResponse], error) {
	return c.addItem.CallUnary(ctx, req)
}

func (c *splitServiceClient) EditItem(ctx context.Context, req *connect.Request[EditItemRequest]) (*connect.Response[MutationResponse], error) {
	return c.editItem.CallUnary(ctx, req)
}

func (c *splitServiceClient) RemoveItem(ctx context.Context, req *connect.Request[RemoveItemRequest]) (*connect.Response[MutationResponse], error) {
	return c.removeItem.CallUnary(ctx, req)
}

func (c *splitServiceClient) ToggleConsumer(ctx context.Context, req *connect.Request[ToggleConsumerRequest]) (*connect.Response[MutationResponse], error) {
	return c.toggleConsumer.CallUnary(ctx, req)
}

func (c *splitServiceClient) ExportImage(ctx context.Context, req *connect.Request[ExportRequest]) (*connect.Response[ExportResponse], error) {
	return c.exportImage.CallUnary(ctx, req)
}

// SuggestServiceClient is a client for the mealsplit.v1.SuggestService service.
type SuggestServiceClient interface {
	GuessItem(context.Context, *connect.Request[SuggestRequest]) (*connect.Response[GuessResponse], error)
	SuggestItems(context.Context, *connect.Request[SuggestRequest]) (*connect.Response[SuggestResponse], error)
}

// NewSuggestServiceClient constructs a client for the SuggestService.
func NewSuggestServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) SuggestServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = append([]connect.ClientOption{WithCodec()}, opts...)
	return &suggestServiceClient{
		guessItem:    connect.NewClient[SuggestRequest, GuessResponse](httpClient, baseURL+SuggestServiceGuessItemProcedure, opts...),
		suggestItems: connect.NewClient[SuggestRequest, SuggestResponse](httpClient, baseURL+SuggestServiceSuggestItemsProcedure, opts...),
	}
}

type suggestServiceClient struct {
	guessItem    *connect.Client[SuggestRequest, GuessResponse]
	suggestItems *connect.Client[SuggestRequest, SuggestResponse]
}

func (c *suggestServiceClient) GuessItem(ctx context.Context, req *connect.Request[SuggestRequest]) (*connect.Response[GuessResponse], error) {
	return c.guessItem.CallUnary(ctx, req)
}

func (c *suggestServiceClient) SuggestItems(ctx context.Context, req *connect.Request[SuggestRequest]) (*connect.Response[SuggestResponse], error) {
	return c.suggestItems.CallUnary(ctx, req)
}
