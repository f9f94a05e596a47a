package claims

import "errors"

// Типизированные ошибки жизненного цикла заявок.
// Обработчики HTTP преобразуют их в коды ответов.
var (
	// ErrNotFound — объявление, пользователь или заявка не найдены
	ErrNotFound = errors.New("запись не найдена")

	// ErrConflict — нарушено предусловие по состоянию: объявление не в том
	// статусе, заявка уже рассмотрена или конкурентный запрос выиграл гонку
	ErrConflict = errors.New("состояние объявления изменилось")

	// ErrSelfClaim — попытка оставить заявку на собственное объявление
	ErrSelfClaim = errors.New("нельзя оставить заявку на собственное объявление")

	// ErrNotOwner — решение по заявке может принимать только владелец
	ErrNotOwner = errors.New("операция доступна только владельцу объявления")

	// ErrClaimMismatch — заявка не относится к указанному объявлению
	ErrClaimMismatch = errors.New("заявка не относится к этому объявлению")

	// ErrInvalidDecision — решение не из множества {approve, decline}
	ErrInvalidDecision = errors.New("недопустимое решение по заявке")
)
