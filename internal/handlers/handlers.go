package handlers

import (
	// Стандартные библиотеки
	"log"
	"net/http"
	"strconv"
	"time"

	// Внутренние пакеты
	"pereval/internal/database"
	"pereval/internal/dto"
	"pereval/internal/models"

	// Сторонние библиотеки
	"github.com/gin-gonic/gin"
)

// RegisterRoutes регистрирует все маршруты API на переданном роутере.
// Вынесено из main, чтобы тесты поднимали тот же роутер, что и боевой сервис.
func RegisterRoutes(router *gin.Engine) {
	router.GET("/", HandleRoot)
	router.GET("/health", HandleHealth)

	router.POST("/submitData", HandleSubmitData)
	// Список по query-параметру user__email; /submitData/ работает через
	// штатный RedirectTrailingSlash.
	router.GET("/submitData", HandleListPasses)
	router.GET("/submitData/:id", HandleGetPass)
	router.PATCH("/submitData/:id", HandleUpdatePass)
}

// HandleRoot возвращает справку о сервисе и карту эндпоинтов.
func HandleRoot(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "Mountain Passes API",
		"version": "1.0.0",
		"endpoints": gin.H{
			"submit_data":   "POST /submitData",
			"get_pass":      "GET /submitData/{id}",
			"update_pass":   "PATCH /submitData/{id}",
			"list_by_email": "GET /submitData?user__email=<email>",
		},
	})
}

// HandleHealth проверяет доступность базы данных и возвращает состояние сервиса.
// При недоступности БД отвечает 503.
func HandleHealth(c *gin.Context) {
	var one int
	if err := database.GetDB().QueryRow("SELECT 1").Scan(&one); err != nil {
		log.Printf("Проверка здоровья: база данных недоступна: %v", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":   "unhealthy",
			"database": "disconnected",
			"error":    err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"database":  "connected",
		"timestamp": time.Now().Format(time.RFC3339),
	})
}

// HandleSubmitData обрабатывает POST /submitData - создание новой записи о перевале.
// Тело запроса валидируется привязкой (обязательные поля, диапазоны координат,
// категории сложности, не более 10 фотографий). После успешного добавления
// записи присваивается статус 'new'.
func HandleSubmitData(c *gin.Context) {
	var req dto.SubmitDataRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	log.Printf("Получен запрос на добавление перевала: %s", req.Title)

	passID, err := database.AddMountainPass(&req)
	if err != nil {
		log.Printf("Не удалось добавить перевал '%s' в БД: %v", req.Title, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Ошибка при сохранении данных в базу данных"})
		return
	}

	c.JSON(http.StatusCreated, dto.SubmitDataResponse{
		ID:      passID,
		Status:  models.StatusNew,
		Message: "Данные успешно отправлены на модерацию",
	})
}

// HandleGetPass обрабатывает GET /submitData/:id - получение полной информации
// о перевале по его ID.
func HandleGetPass(c *gin.Context) {
	passID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Некорректный ID перевала"})
		return
	}

	pass, err := database.GetPassByID(passID)
	if err != nil {
		log.Printf("Ошибка БД при получении перевала %d: %v", passID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Внутренняя ошибка сервера"})
		return
	}
	if pass == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Перевал с ID " + c.Param("id") + " не найден"})
		return
	}

	c.JSON(http.StatusOK, pass)
}

// HandleUpdatePass обрабатывает PATCH /submitData/:id - редактирование
// существующей записи. Ответ всегда в формате {state, message}: state = 1
// при успехе, state = 0 при отказе (запись не найдена, статус не 'new',
// попытка изменить данные отправителя) или ошибке сохранения.
func HandleUpdatePass(c *gin.Context) {
	passID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Некорректный ID перевала"})
		return
	}

	var req dto.SubmitDataRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := database.UpdateMountainPass(passID, &req)
	if err != nil {
		log.Printf("Ошибка при обновлении перевала %d: %v", passID, err)
		c.JSON(http.StatusOK, dto.UpdateResult{
			State:   0,
			Message: "Ошибка при обновлении записи: " + err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, result)
}

// HandleListPasses обрабатывает GET /submitData?user__email=<email> -
// список всех перевалов, добавленных отправителем с указанным email,
// от новых к старым. Неизвестный email - это пустой список, а не ошибка.
func HandleListPasses(c *gin.Context) {
	email := c.Query("user__email")
	if email == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Не указан параметр user__email"})
		return
	}

	passes, err := database.GetPassesByUserEmail(email)
	if err != nil {
		log.Printf("Ошибка БД при получении перевалов пользователя %s: %v", email, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Внутренняя ошибка сервера"})
		return
	}

	c.JSON(http.StatusOK, passes)
}
