package chainservice

// MintRequest запрос на чеканку токена билета на адрес кошелька посетителя.
type MintRequest struct {
	OwnerAddress string `json:"owner_address"`
}

// MintResponse ответ сервиса чеканки с идентификатором выпущенного токена.
type MintResponse struct {
	TokenID string `json:"token_id"`
}

// UseRequest запрос на погашение токена при проходе на событие.
type UseRequest struct {
	TokenID string `json:"token_id"`
}

// ErrorResponse тело ответа сервиса при ошибке.
// Поле Code позволяет различать погашенный токен и прочие отказы
// без разбора текста сообщения.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// CodeAlreadyUsed значение ErrorResponse.Code для уже погашенного токена.
const CodeAlreadyUsed = "already_used"
