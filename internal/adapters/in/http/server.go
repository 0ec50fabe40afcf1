// Package http exposes the coordinator's REST API and the per-order status
// stream. It coordinates between HTTP handlers and application use cases.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"fulfillment/internal/core/application/usecases/commands"
	"fulfillment/internal/core/application/usecases/queries"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/core/ports"
	"fulfillment/internal/pkg/errs"

	"github.com/labstack/echo/v4"
)

// CreateOrderHandler accepts a new order into the workflow.
type CreateOrderHandler interface {
	Handle(ctx context.Context, cmd commands.CreateOrderCommand) (*order.Order, error)
}

// CancelOrderHandler cancels an in-flight order.
type CancelOrderHandler interface {
	Handle(ctx context.Context, cmd commands.CancelOrderCommand) error
}

// GetOrderHandler looks one order up by id.
type GetOrderHandler interface {
	Handle(ctx context.Context, query queries.GetOrderQuery) (queries.OrderResponse, error)
}

// GetCustomerOrdersHandler lists a customer's orders.
type GetCustomerOrdersHandler interface {
	Handle(ctx context.Context, query queries.GetCustomerOrdersQuery) ([]queries.OrderResponse, error)
}

// GetOrdersByStatusHandler lists orders currently in one status.
type GetOrdersByStatusHandler interface {
	Handle(ctx context.Context, query queries.GetOrdersByStatusQuery) ([]queries.OrderResponse, error)
}

// GetOrderByCorrelationHandler looks one order up by its workflow key.
type GetOrderByCorrelationHandler interface {
	Handle(ctx context.Context, query queries.GetOrderByCorrelationQuery) (queries.OrderResponse, error)
}

// GetOrderEventsHandler returns an order's audit timeline.
type GetOrderEventsHandler interface {
	Handle(ctx context.Context, query queries.GetOrderEventsQuery) ([]queries.EventResponse, error)
}

// Server handles the REST API. It coordinates between HTTP handlers and
// application use cases; all business rules live behind the handlers.
type Server struct {
	createOrderHandler CreateOrderHandler
	cancelOrderHandler CancelOrderHandler

	getOrderHandler              GetOrderHandler
	getCustomerOrdersHandler     GetCustomerOrdersHandler
	getOrdersByStatusHandler     GetOrdersByStatusHandler
	getOrderByCorrelationHandler GetOrderByCorrelationHandler
	getOrderEventsHandler        GetOrderEventsHandler

	notifier ports.Notifier
}

// NewServer creates a new HTTP server with the required command and query handlers.
func NewServer(
	createOrderHandler CreateOrderHandler,
	cancelOrderHandler CancelOrderHandler,
	getOrderHandler GetOrderHandler,
	getCustomerOrdersHandler GetCustomerOrdersHandler,
	getOrdersByStatusHandler GetOrdersByStatusHandler,
	getOrderByCorrelationHandler GetOrderByCorrelationHandler,
	getOrderEventsHandler GetOrderEventsHandler,
	notifier ports.Notifier,
) *Server {
	return &Server{
		createOrderHandler:           createOrderHandler,
		cancelOrderHandler:           cancelOrderHandler,
		getOrderHandler:              getOrderHandler,
		getCustomerOrdersHandler:     getCustomerOrdersHandler,
		getOrdersByStatusHandler:     getOrdersByStatusHandler,
		getOrderByCorrelationHandler: getOrderByCorrelationHandler,
		getOrderEventsHandler:        getOrderEventsHandler,
		notifier:                     notifier,
	}
}

// RegisterRoutes mounts all API routes on the echo instance.
func (s *Server) RegisterRoutes(e *echo.Echo) {
	api := e.Group("/api/v1")
	api.POST("/orders", s.CreateOrder)
	api.GET("/orders/:orderId", s.GetOrder)
	api.GET("/orders/:orderId/events", s.GetOrderEvents)
	api.GET("/orders/:orderId/stream", s.StreamOrder)
	api.POST("/orders/:orderId/cancel", s.CancelOrder)
	api.GET("/orders/customer/:customerId", s.GetCustomerOrders)
	api.GET("/orders/status/:status", s.GetOrdersByStatus)
	api.GET("/orders/correlation/:correlationId", s.GetOrderByCorrelation)

	e.GET("/health", s.Health)
}

// CreateOrder handles POST /api/v1/orders - accepts a new order and starts
// its workflow by dispatching the billing request.
func (s *Server) CreateOrder(ctx echo.Context) error {
	var body NewOrder
	if err := ctx.Bind(&body); err != nil {
		return ctx.JSON(http.StatusBadRequest, Error{
			Code:    http.StatusBadRequest,
			Message: "Invalid request body",
		})
	}

	address, err := order.NewAddress(body.Address.Street, body.Address.City, body.Address.PostalCode, body.Address.Country)
	if err != nil {
		return ctx.JSON(http.StatusBadRequest, Error{
			Code:    http.StatusBadRequest,
			Message: "Invalid address: " + err.Error(),
		})
	}

	cmd, err := commands.NewCreateOrderCommand(body.CustomerID, address, body.TotalAmount)
	if err != nil {
		return ctx.JSON(http.StatusBadRequest, Error{
			Code:    http.StatusBadRequest,
			Message: "Invalid order data: " + err.Error(),
		})
	}

	created, err := s.createOrderHandler.Handle(ctx.Request().Context(), cmd)
	if err != nil {
		return s.errorResponse(ctx, err)
	}

	// A dispatch failure at intake leaves the order in a terminal FAILED
	// state; it is still returned so the caller can inspect it.
	return ctx.JSON(http.StatusCreated, orderFromAggregate(created))
}

// GetOrder handles GET /api/v1/orders/:orderId - retrieves one order.
func (s *Server) GetOrder(ctx echo.Context) error {
	orderID, err := parseOrderID(ctx)
	if err != nil {
		return s.errorResponse(ctx, err)
	}

	query, err := queries.NewGetOrderQuery(orderID)
	if err != nil {
		return s.errorResponse(ctx, err)
	}

	resp, err := s.getOrderHandler.Handle(ctx.Request().Context(), query)
	if err != nil {
		return s.errorResponse(ctx, err)
	}

	return ctx.JSON(http.StatusOK, orderFromReadModel(resp))
}

// GetCustomerOrders handles GET /api/v1/orders/customer/:customerId -
// lists a customer's orders, newest first.
func (s *Server) GetCustomerOrders(ctx echo.Context) error {
	query, err := queries.NewGetCustomerOrdersQuery(ctx.Param("customerId"))
	if err != nil {
		return s.errorResponse(ctx, err)
	}

	orders, err := s.getCustomerOrdersHandler.Handle(ctx.Request().Context(), query)
	if err != nil {
		return s.errorResponse(ctx, err)
	}

	response := make([]Order, len(orders))
	for i, resp := range orders {
		response[i] = orderFromReadModel(resp)
	}

	return ctx.JSON(http.StatusOK, response)
}

// GetOrdersByStatus handles GET /api/v1/orders/status/:status - lists orders
// currently in the given workflow status.
func (s *Server) GetOrdersByStatus(ctx echo.Context) error {
	status, err := order.ParseStatus(ctx.Param("status"))
	if err != nil {
		return ctx.JSON(http.StatusBadRequest, Error{
			Code:    http.StatusBadRequest,
			Message: "Unknown status: " + ctx.Param("status"),
		})
	}

	query, err := queries.NewGetOrdersByStatusQuery(status)
	if err != nil {
		return s.errorResponse(ctx, err)
	}

	orders, err := s.getOrdersByStatusHandler.Handle(ctx.Request().Context(), query)
	if err != nil {
		return s.errorResponse(ctx, err)
	}

	response := make([]Order, len(orders))
	for i, resp := range orders {
		response[i] = orderFromReadModel(resp)
	}

	return ctx.JSON(http.StatusOK, response)
}

// GetOrderByCorrelation handles GET /api/v1/orders/correlation/:correlationId -
// retrieves the order tracked by the given workflow key.
func (s *Server) GetOrderByCorrelation(ctx echo.Context) error {
	query, err := queries.NewGetOrderByCorrelationQuery(ctx.Param("correlationId"))
	if err != nil {
		return s.errorResponse(ctx, err)
	}

	resp, err := s.getOrderByCorrelationHandler.Handle(ctx.Request().Context(), query)
	if err != nil {
		return s.errorResponse(ctx, err)
	}

	return ctx.JSON(http.StatusOK, orderFromReadModel(resp))
}

// GetOrderEvents handles GET /api/v1/orders/:orderId/events - returns the
// order's audit timeline, oldest first.
func (s *Server) GetOrderEvents(ctx echo.Context) error {
	orderID, err := parseOrderID(ctx)
	if err != nil {
		return s.errorResponse(ctx, err)
	}

	query, err := queries.NewGetOrderEventsQuery(orderID)
	if err != nil {
		return s.errorResponse(ctx, err)
	}

	events, err := s.getOrderEventsHandler.Handle(ctx.Request().Context(), query)
	if err != nil {
		return s.errorResponse(ctx, err)
	}

	response := make([]Event, len(events))
	for i, resp := range events {
		response[i] = eventFromReadModel(resp)
	}

	return ctx.JSON(http.StatusOK, response)
}

// CancelOrder handles POST /api/v1/orders/:orderId/cancel - cancels an
// in-flight order. Terminal orders cannot be cancelled.
func (s *Server) CancelOrder(ctx echo.Context) error {
	orderID, err := parseOrderID(ctx)
	if err != nil {
		return s.errorResponse(ctx, err)
	}

	var body CancelOrder
	if err = ctx.Bind(&body); err != nil {
		return ctx.JSON(http.StatusBadRequest, Error{
			Code:    http.StatusBadRequest,
			Message: "Invalid request body",
		})
	}

	cmd, err := commands.NewCancelOrderCommand(orderID, body.Reason)
	if err != nil {
		return s.errorResponse(ctx, err)
	}

	if err = s.cancelOrderHandler.Handle(ctx.Request().Context(), cmd); err != nil {
		return s.errorResponse(ctx, err)
	}

	return ctx.NoContent(http.StatusNoContent)
}

// StreamOrder handles GET /api/v1/orders/:orderId/stream - pushes the
// order's live status updates as server-sent events until the client
// disconnects.
func (s *Server) StreamOrder(ctx echo.Context) error {
	orderID, err := parseOrderID(ctx)
	if err != nil {
		return s.errorResponse(ctx, err)
	}

	updates, teardown := s.notifier.Subscribe(orderID.String())
	defer teardown()

	resp := ctx.Response()
	resp.Header().Set(echo.HeaderContentType, "text/event-stream")
	resp.Header().Set(echo.HeaderCacheControl, "no-cache")
	resp.Header().Set(echo.HeaderConnection, "keep-alive")
	resp.WriteHeader(http.StatusOK)
	resp.Flush()

	done := ctx.Request().Context().Done()
	for {
		select {
		case <-done:
			return nil
		case update, open := <-updates:
			if !open {
				return nil
			}
			payload, marshalErr := json.Marshal(update)
			if marshalErr != nil {
				continue
			}
			if _, writeErr := fmt.Fprintf(resp, "data: %s\n\n", payload); writeErr != nil {
				return nil
			}
			resp.Flush()
		}
	}
}

// Health handles GET /health - liveness probe.
func (s *Server) Health(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func parseOrderID(ctx echo.Context) (kernel.UUID, error) {
	return kernel.UUIDFromString(ctx.Param("orderId"))
}

// errorResponse maps application errors onto HTTP status codes.
func (s *Server) errorResponse(ctx echo.Context, err error) error {
	code := http.StatusInternalServerError
	switch {
	case errors.Is(err, errs.ErrObjectNotFound):
		code = http.StatusNotFound
	case errors.Is(err, errs.ErrVersionConflict):
		code = http.StatusConflict
	case errors.Is(err, errs.ErrValueIsRequired),
		errors.Is(err, errs.ErrValueIsInvalid),
		errors.Is(err, errs.ErrValueIsOutOfRange):
		code = http.StatusBadRequest
	}

	return ctx.JSON(code, Error{Code: code, Message: err.Error()})
}
