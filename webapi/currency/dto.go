package currency

// ConvertQuery holds the query parameters of GET /convert.
type ConvertQuery struct {
	From   string `query:"from" validate:"required"`
	To     string `query:"to" validate:"required"`
	Amount string `query:"amount" validate:"required"`
}
