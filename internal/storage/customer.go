package storage

type Customer struct {
	RowIndex   int    `json:"row_index"`
	Timestamp  string `json:"timestamp"`
	SerialNo   string `json:"serial_no"`
	CustomerID string `json:"customer_id"`
	Name       string `json:"name"`
	Phone      string `json:"phone"`
	Email      string `json:"email"`
	Address    string `json:"address"`
}
