package service_test

import (
	"context"
	"sync"

	"github.com/pablofelipe01/rodapolo-sub000/entity"
)

type MockReceiptIssuer struct {
	lock           sync.Mutex
	IssuedReceipts []IssueReceiptRequest
}

type IssueReceiptRequest struct {
	purchaseID string
	price      entity.Money
}

func (m *MockReceiptIssuer) IssueReceipt(_ context.Context, purchaseID string, price entity.Money) error {
	m.lock.Lock()
	m.IssuedReceipts = append(m.IssuedReceipts, IssueReceiptRequest{purchaseID: purchaseID, price: price})
	m.lock.Unlock()

	return nil
}

func (m *MockReceiptIssuer) issued() []IssueReceiptRequest {
	m.lock.Lock()
	defer m.lock.Unlock()

	return append([]IssueReceiptRequest(nil), m.IssuedReceipts...)
}

type MockSpreadsheetAppender struct {
	lock         sync.Mutex
	RowsAppended []AppendRowRequest
}

type AppendRowRequest struct {
	spreadsheetName string
	row             []string
}

func (m *MockSpreadsheetAppender) AppendRow(_ context.Context, spreadsheetName string, row []string) error {
	m.lock.Lock()
	m.RowsAppended = append(m.RowsAppended, AppendRowRequest{spreadsheetName: spreadsheetName, row: row})
	m.lock.Unlock()

	return nil
}

func (m *MockSpreadsheetAppender) rows(spreadsheetName string) [][]string {
	m.lock.Lock()
	defer m.lock.Unlock()

	var rows [][]string
	for _, r := range m.RowsAppended {
		if r.spreadsheetName == spreadsheetName {
			rows = append(rows, r.row)
		}
	}
	return rows
}
