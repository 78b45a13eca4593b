package clients

import (
	"context"
	"fmt"
	"net/http"

	"github.com/ThreeDotsLabs/go-event-driven/common/clients"
	"github.com/ThreeDotsLabs/go-event-driven/common/clients/receipts"
	"github.com/pablofelipe01/rodapolo-sub000/entity"
)

type ReceiptsClient struct {
	client receipts.ClientWithResponsesInterface
}

func NewReceiptsClient(c *clients.Clients) ReceiptsClient {
	return ReceiptsClient{
		client: c.Receipts,
	}
}

// IssueReceipt issues the receipt for one ticket purchase. The purchase id is
// stable across redeliveries, so the gateway can deduplicate on it.
func (c ReceiptsClient) IssueReceipt(ctx context.Context, purchaseID string, price entity.Money) error {
	body := receipts.CreateReceipt{
		TicketId: purchaseID,
		Price: receipts.Money{
			MoneyAmount:   price.Amount,
			MoneyCurrency: price.Currency,
		},
	}

	res, err := c.client.PutReceiptsWithResponse(ctx, body)
	if err != nil {
		return fmt.Errorf("put receipt request: %w", err)
	}

	switch res.StatusCode() {
	case http.StatusOK, http.StatusCreated:
		return nil
	default:
		return fmt.Errorf("unexpected status code: %v", res.StatusCode())
	}
}
