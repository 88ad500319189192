// Package sl содержит мелкие помощники для структурированного логирования.
package sl

import "log/slog"

// Err оборачивает ошибку в slog.Attr с ключом "error", чтобы все
// строки лога сервиса выводили ошибки в одном и том же поле.
func Err(err error) slog.Attr {
	return slog.Attr{
		Key:   "error",
		Value: slog.StringValue(err.Error()),
	}
}
