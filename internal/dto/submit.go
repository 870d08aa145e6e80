package dto

// CoordsDTO — координаты перевала.
// Числовые поля объявлены указателями: нулевые значения (экватор, нулевой меридиан,
// высота 0) корректны, и валидатор должен отличать их от отсутствующего поля.
type CoordsDTO struct {
	Latitude  *float64 `json:"latitude" binding:"required,gte=-90,lte=90"`    // Широта от -90 до 90
	Longitude *float64 `json:"longitude" binding:"required,gte=-180,lte=180"` // Долгота от -180 до 180
	Height    *int64   `json:"height" binding:"required,gte=0,lte=9000"`      // Высота от 0 до 9000 метров
}

// LevelDTO — сезонные категории сложности. Каждый сезон необязателен,
// но если указан, значение должно входить в фиксированный набор категорий.
type LevelDTO struct {
	Winter string `json:"winter" binding:"omitempty,oneof=1A 1B 2A 2B 3A 3B"`
	Summer string `json:"summer" binding:"omitempty,oneof=1A 1B 2A 2B 3A 3B"`
	Autumn string `json:"autumn" binding:"omitempty,oneof=1A 1B 2A 2B 3A 3B"`
	Spring string `json:"spring" binding:"omitempty,oneof=1A 1B 2A 2B 3A 3B"`
}

// BySeason возвращает только заполненные сезоны в фиксированном порядке обхода
// (winter, summer, autumn, spring). Порядок важен для детерминированной вставки.
func (l *LevelDTO) BySeason() [][2]string {
	var out [][2]string
	for _, pair := range [][2]string{
		{"winter", l.Winter},
		{"summer", l.Summer},
		{"autumn", l.Autumn},
		{"spring", l.Spring},
	} {
		if pair[1] != "" {
			out = append(out, pair)
		}
	}
	return out
}

// ImageDTO — ссылка на фотографию перевала в запросе.
type ImageDTO struct {
	Title string `json:"title" binding:"required,max=255"`
	URL   string `json:"url" binding:"required"`
}

// UserDTO — контактные данные отправителя.
type UserDTO struct {
	Email string `json:"email" binding:"required,email"`
	Phone string `json:"phone" binding:"required,min=10,max=20"`
	Fam   string `json:"fam" binding:"required,max=50"`
	Name  string `json:"name" binding:"required,max=50"`
	Otc   string `json:"otc" binding:"omitempty,max=50"`
}

// SubmitDataRequest — тело запроса POST /submitData и PATCH /submitData/:id.
// Ограничения полей повторяют контракт API: не более 10 изображений,
// названия не длиннее 255 символов.
type SubmitDataRequest struct {
	BeautyTitle string     `json:"beautyTitle" binding:"omitempty,max=255"`
	Title       string     `json:"title" binding:"required,max=255"`
	OtherTitles string     `json:"other_titles" binding:"omitempty,max=255"`
	Connect     string     `json:"connect" binding:"omitempty,max=255"`
	User        UserDTO    `json:"user" binding:"required"`
	Coords      CoordsDTO  `json:"coords" binding:"required"`
	Level       *LevelDTO  `json:"level" binding:"omitempty"`
	Images      []ImageDTO `json:"images" binding:"omitempty,max=10,dive"`
}

// SubmitDataResponse — ответ на успешное создание записи о перевале.
type SubmitDataResponse struct {
	ID      int64  `json:"id"`
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// UpdateResult — результат попытки редактирования записи.
// State = 1 при успехе, 0 при отказе; Message описывает причину.
type UpdateResult struct {
	State   int    `json:"state"`
	Message string `json:"message"`
}

// PassUser — контактные данные отправителя в ответе.
type PassUser struct {
	Email string `json:"email"`
	Phone string `json:"phone"`
	Fam   string `json:"fam"`
	Name  string `json:"name"`
	Otc   string `json:"otc"`
}

// PassCoords — координаты перевала в ответе.
type PassCoords struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Height    int64   `json:"height"`
}

// PassImage — фотография перевала в ответе.
type PassImage struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

// PassResponse — полное представление перевала, возвращаемое
// GET /submitData/:id и GET /submitData?user__email=...
type PassResponse struct {
	ID          int64             `json:"id"`
	BeautyTitle string            `json:"beauty_title"`
	Title       string            `json:"title"`
	OtherTitles string            `json:"other_titles"`
	Connect     string            `json:"connect"`
	User        PassUser          `json:"user"`
	Coords      PassCoords        `json:"coords"`
	Status      string            `json:"status"`
	AddTime     string            `json:"add_time"`
	Level       map[string]string `json:"level"`
	Images      []PassImage       `json:"images"`
}
