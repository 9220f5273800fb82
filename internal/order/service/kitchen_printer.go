package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"comanda/internal/domain"
)

const printTimeout = 5 * time.Second

// KitchenPrinter is the external ticket-printing collaborator. The order
// state machine calls it fire-and-forget when an order enters preparing;
// a failed print never rolls back the transition.
type KitchenPrinter interface {
	PrintTicket(ctx context.Context, order *domain.Order) error
}

type kitchenTicket struct {
	OrderNumber string             `json:"orderNumber"`
	OrderType   string             `json:"orderType"`
	TableID     *uint              `json:"tableId,omitempty"`
	Items       []kitchenTicketRow `json:"items"`
}

type kitchenTicketRow struct {
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
}

// HTTPKitchenPrinter posts tickets to the printing service.
type HTTPKitchenPrinter struct {
	url    string
	client *http.Client
}

func NewHTTPKitchenPrinter(url string) *HTTPKitchenPrinter {
	return &HTTPKitchenPrinter{
		url:    url,
		client: &http.Client{Timeout: printTimeout},
	}
}

func (p *HTTPKitchenPrinter) PrintTicket(ctx context.Context, order *domain.Order) error {
	ticket := kitchenTicket{
		OrderNumber: order.OrderNumber,
		OrderType:   order.OrderType,
		TableID:     order.TableID,
	}
	for _, item := range order.Items {
		ticket.Items = append(ticket.Items, kitchenTicketRow{Name: item.Name, Quantity: item.Quantity})
	}

	body, err := json.Marshal(ticket)
	if err != nil {
		return fmt.Errorf("encoding kitchen ticket: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("building kitchen ticket request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("posting kitchen ticket: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("kitchen printer returned status %d", resp.StatusCode)
	}

	return nil
}

// NopKitchenPrinter is used when no printer URL is configured.
type NopKitchenPrinter struct{}

func (NopKitchenPrinter) PrintTicket(ctx context.Context, order *domain.Order) error {
	return nil
}
