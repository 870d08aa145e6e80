package database

import (
	// Стандартные библиотеки
	"database/sql"
	"fmt"
	"log"
	"strings"

	// Внутренние пакеты
	"pereval/internal/dto"
	"pereval/internal/models"
)

// passSelectSQL - общая часть выборки перевала вместе с данными отправителя.
const passSelectSQL = `
	SELECT mp.id, mp.beauty_title, mp.title, mp.other_titles, mp.connect,
	       mp.latitude, mp.longitude, mp.height, mp.status, mp.add_time,
	       u.email, u.phone, u.fam, u.name, u.otc
	FROM mountain_passes mp
	JOIN users u ON mp.user_id = u.id`

// AddMountainPass добавляет новую запись о перевале в базу данных.
// Вся операция выполняется в одной транзакции: поиск или создание отправителя,
// вставка перевала со статусом 'new', вставка сезонных категорий сложности
// и ссылок на фотографии. При любой ошибке транзакция откатывается.
// Возвращает ID созданного перевала.
func AddMountainPass(req *dto.SubmitDataRequest) (int64, error) {
	tx, err := DB.Begin()
	if err != nil {
		return 0, fmt.Errorf("ошибка начала транзакции AddMountainPass: %w", err)
	}
	// defer tx.Rollback() гарантирует откат, если Commit() не будет вызван.
	// Если Commit() успешен, Rollback() ничего не делает.
	defer tx.Rollback()

	// 1. Сначала находим существующего отправителя или создаем нового.
	userID, err := getOrCreateUser(tx, &req.User)
	if err != nil {
		return 0, err
	}

	// 2. Добавляем перевал. Статус новой записи всегда 'new'.
	stmt, err := tx.Prepare(`
		INSERT INTO mountain_passes
			(beauty_title, title, other_titles, connect, user_id,
			 latitude, longitude, height, status, add_time)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return 0, fmt.Errorf("ошибка подготовки запроса AddMountainPass: %w", err)
	}
	defer stmt.Close()

	res, err := stmt.Exec(
		req.BeautyTitle,
		req.Title,
		req.OtherTitles,
		req.Connect,
		userID,
		*req.Coords.Latitude,
		*req.Coords.Longitude,
		*req.Coords.Height,
		models.StatusNew,
		nowString(),
	)
	if err != nil {
		return 0, fmt.Errorf("ошибка вставки перевала '%s': %w", req.Title, err)
	}

	passID, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("ошибка получения ID перевала AddMountainPass: %w", err)
	}

	// 3. Добавляем сезонные категории сложности (если переданы).
	if req.Level != nil {
		if err = upsertLevels(tx, passID, req.Level); err != nil {
			return 0, err
		}
	}

	// 4. Добавляем ссылки на фотографии (если переданы).
	if err = insertImages(tx, passID, req.Images); err != nil {
		return 0, err
	}

	if err = tx.Commit(); err != nil {
		return 0, fmt.Errorf("ошибка фиксации транзакции AddMountainPass: %w", err)
	}

	log.Printf("Перевал '%s' успешно добавлен с ID: %d (UserID: %d)", req.Title, passID, userID)
	return passID, nil
}

// getOrCreateUser ищет отправителя по email или телефону и возвращает его ID.
// Если отправитель не найден, создает нового. Выполняется внутри транзакции.
func getOrCreateUser(tx *sql.Tx, u *dto.UserDTO) (int64, error) {
	var id int64
	row := tx.QueryRow("SELECT id FROM users WHERE email = ? OR phone = ? LIMIT 1", u.Email, u.Phone)
	err := row.Scan(&id)
	if err == nil {
		// Отправитель уже известен - переиспользуем его запись.
		return id, nil
	}
	if err != sql.ErrNoRows {
		return 0, fmt.Errorf("ошибка поиска пользователя %s: %w", u.Email, err)
	}

	res, err := tx.Exec(
		"INSERT INTO users (email, phone, fam, name, otc) VALUES (?, ?, ?, ?, ?)",
		u.Email, u.Phone, u.Fam, u.Name, u.Otc,
	)
	if err != nil {
		// Нарушение уникальности email означает гонку двух вставок либо
		// несогласованные данные; выносим в отдельное сообщение, как и прочие
		// нарушения ограничений.
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return 0, fmt.Errorf("пользователь с email '%s' уже существует", u.Email)
		}
		return 0, fmt.Errorf("ошибка создания пользователя %s: %w", u.Email, err)
	}

	id, err = res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("ошибка получения ID пользователя %s: %w", u.Email, err)
	}
	log.Printf("Создан пользователь: %s (ID: %d)", u.Email, id)
	return id, nil
}

// upsertLevels вставляет сезонные категории сложности перевала.
// При повторной вставке для той же пары (перевал, сезон) категория обновляется
// (ON CONFLICT ... DO UPDATE), уникальность пары обеспечивает сама схема.
func upsertLevels(tx *sql.Tx, passID int64, level *dto.LevelDTO) error {
	stmt, err := tx.Prepare(`
		INSERT INTO difficulty_levels (pass_id, season, level)
		VALUES (?, ?, ?)
		ON CONFLICT (pass_id, season) DO UPDATE SET level = excluded.level
	`)
	if err != nil {
		return fmt.Errorf("ошибка подготовки запроса upsertLevels: %w", err)
	}
	defer stmt.Close()

	for _, pair := range level.BySeason() {
		if _, err = stmt.Exec(passID, pair[0], pair[1]); err != nil {
			return fmt.Errorf("ошибка вставки категории сложности (%s=%s) для перевала %d: %w",
				pair[0], pair[1], passID, err)
		}
	}
	return nil
}

// insertImages вставляет ссылки на фотографии перевала.
func insertImages(tx *sql.Tx, passID int64, images []dto.ImageDTO) error {
	if len(images) == 0 {
		return nil
	}
	stmt, err := tx.Prepare("INSERT INTO images (pass_id, title, img_url) VALUES (?, ?, ?)")
	if err != nil {
		return fmt.Errorf("ошибка подготовки запроса insertImages: %w", err)
	}
	defer stmt.Close()

	for _, img := range images {
		if _, err = stmt.Exec(passID, img.Title, img.URL); err != nil {
			return fmt.Errorf("ошибка вставки фотографии '%s' для перевала %d: %w", img.Title, passID, err)
		}
	}
	return nil
}

// GetPassByID возвращает полное представление перевала по его ID:
// данные отправителя, координаты, сезонные категории сложности и фотографии.
// Возвращает nil, nil, если перевал не найден (это не ошибка БД).
func GetPassByID(passID int64) (*dto.PassResponse, error) {
	mp := &models.MountainPass{ID: passID}
	u := &models.User{}

	row := DB.QueryRow(passSelectSQL+" WHERE mp.id = ?", passID)
	err := row.Scan(
		&mp.ID, &mp.BeautyTitle, &mp.Title, &mp.OtherTitles, &mp.Connect,
		&mp.Latitude, &mp.Longitude, &mp.Height, &mp.Status, &mp.AddTime,
		&u.Email, &u.Phone, &u.Fam, &u.Name, &u.Otc,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil // Перевал не найден - возвращаем nil, nil
		}
		return nil, fmt.Errorf("ошибка сканирования GetPassByID для ID %d: %w", passID, err)
	}

	return buildPassResponse(mp, u)
}

// GetPassesByUserEmail возвращает все перевалы, добавленные отправителем
// с указанным email, от новых к старым.
func GetPassesByUserEmail(email string) ([]*dto.PassResponse, error) {
	// Сортировка по add_time корректна лексикографически: метки времени
	// хранятся строками фиксированной ширины. ID добиваем для устойчивости
	// порядка при совпадающих метках.
	rows, err := DB.Query(passSelectSQL+" WHERE u.email = ? ORDER BY mp.add_time DESC, mp.id DESC", email)
	if err != nil {
		return nil, fmt.Errorf("ошибка выборки перевалов пользователя %s: %w", email, err)
	}
	defer rows.Close()

	// Сначала вычитываем все строки и закрываем курсор: пул ограничен одним
	// соединением, и вложенные запросы при открытом курсоре привели бы к взаимной
	// блокировке.
	type passRow struct {
		mp models.MountainPass
		u  models.User
	}
	var found []passRow
	for rows.Next() {
		var pr passRow
		err = rows.Scan(
			&pr.mp.ID, &pr.mp.BeautyTitle, &pr.mp.Title, &pr.mp.OtherTitles, &pr.mp.Connect,
			&pr.mp.Latitude, &pr.mp.Longitude, &pr.mp.Height, &pr.mp.Status, &pr.mp.AddTime,
			&pr.u.Email, &pr.u.Phone, &pr.u.Fam, &pr.u.Name, &pr.u.Otc,
		)
		if err != nil {
			return nil, fmt.Errorf("ошибка сканирования GetPassesByUserEmail для %s: %w", email, err)
		}
		found = append(found, pr)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("ошибка обхода результатов GetPassesByUserEmail для %s: %w", email, err)
	}
	rows.Close()

	result := make([]*dto.PassResponse, 0, len(found))
	for i := range found {
		resp, err := buildPassResponse(&found[i].mp, &found[i].u)
		if err != nil {
			return nil, err
		}
		result = append(result, resp)
	}
	return result, nil
}

// buildPassResponse собирает полное представление перевала, дочитывая
// сезонные категории и фотографии.
func buildPassResponse(mp *models.MountainPass, u *models.User) (*dto.PassResponse, error) {
	levels, err := loadLevels(mp.ID)
	if err != nil {
		return nil, err
	}
	images, err := loadImages(mp.ID)
	if err != nil {
		return nil, err
	}

	return &dto.PassResponse{
		ID:          mp.ID,
		BeautyTitle: mp.BeautyTitle,
		Title:       mp.Title,
		OtherTitles: mp.OtherTitles,
		Connect:     mp.Connect,
		User: dto.PassUser{
			Email: u.Email,
			Phone: u.Phone,
			Fam:   u.Fam,
			Name:  u.Name,
			Otc:   u.Otc,
		},
		Coords: dto.PassCoords{
			Latitude:  mp.Latitude,
			Longitude: mp.Longitude,
			Height:    mp.Height,
		},
		Status:  mp.Status,
		AddTime: mp.AddTime,
		Level:   levels,
		Images:  images,
	}, nil
}

// loadLevels возвращает сезонные категории сложности перевала в виде
// отображения сезон -> категория. Отсутствие записей - пустое отображение.
func loadLevels(passID int64) (map[string]string, error) {
	rows, err := DB.Query("SELECT season, level FROM difficulty_levels WHERE pass_id = ?", passID)
	if err != nil {
		return nil, fmt.Errorf("ошибка выборки категорий сложности перевала %d: %w", passID, err)
	}
	defer rows.Close()

	levels := make(map[string]string)
	for rows.Next() {
		var dl models.DifficultyLevel
		if err = rows.Scan(&dl.Season, &dl.Level); err != nil {
			return nil, fmt.Errorf("ошибка сканирования категории сложности перевала %d: %w", passID, err)
		}
		levels[dl.Season] = dl.Level
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("ошибка обхода категорий сложности перевала %d: %w", passID, err)
	}
	return levels, nil
}

// loadImages возвращает фотографии перевала. Отсутствие записей - пустой срез
// (в JSON сериализуется как [], а не null).
func loadImages(passID int64) ([]dto.PassImage, error) {
	rows, err := DB.Query("SELECT title, img_url FROM images WHERE pass_id = ?", passID)
	if err != nil {
		return nil, fmt.Errorf("ошибка выборки фотографий перевала %d: %w", passID, err)
	}
	defer rows.Close()

	images := make([]dto.PassImage, 0)
	for rows.Next() {
		var img models.Image
		if err = rows.Scan(&img.Title, &img.ImgURL); err != nil {
			return nil, fmt.Errorf("ошибка сканирования фотографии перевала %d: %w", passID, err)
		}
		images = append(images, dto.PassImage{Title: img.Title, URL: img.ImgURL})
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("ошибка обхода фотографий перевала %d: %w", passID, err)
	}
	return images, nil
}

// UpdateMountainPass обновляет существующий перевал, если он в статусе 'new'.
// Контактные данные отправителя защищены от редактирования: запрос с измененным
// email, телефоном или ФИО отклоняется. Поля перевала, категории сложности
// и фотографии заменяются в одной транзакции, проставляется update_time.
// Отказ по бизнес-правилу возвращается как UpdateResult{State: 0} без ошибки;
// ошибка возвращается только при проблемах с самой БД.
func UpdateMountainPass(passID int64, req *dto.SubmitDataRequest) (*dto.UpdateResult, error) {
	// Проверяем существование и статус перевала.
	var status string
	var userID int64
	row := DB.QueryRow("SELECT status, user_id FROM mountain_passes WHERE id = ?", passID)
	if err := row.Scan(&status, &userID); err != nil {
		if err == sql.ErrNoRows {
			return &dto.UpdateResult{State: 0, Message: fmt.Sprintf("Перевал с ID %d не найден", passID)}, nil
		}
		return nil, fmt.Errorf("ошибка проверки статуса перевала %d: %w", passID, err)
	}

	if status != models.StatusNew {
		return &dto.UpdateResult{
			State: 0,
			Message: fmt.Sprintf("Редактирование невозможно: перевал в статусе \"%s\". Доступно только для статуса \"new\"",
				status),
		}, nil
	}

	// Проверяем, что запрос не пытается изменить защищенные поля отправителя.
	existing := &models.User{}
	row = DB.QueryRow("SELECT email, phone, fam, name, otc FROM users WHERE id = ?", userID)
	if err := row.Scan(&existing.Email, &existing.Phone, &existing.Fam, &existing.Name, &existing.Otc); err != nil {
		return nil, fmt.Errorf("ошибка выборки пользователя %d при обновлении перевала %d: %w", userID, passID, err)
	}

	var changed []string
	for _, f := range []struct {
		name       string
		prev, next string
	}{
		{"email", existing.Email, req.User.Email},
		{"phone", existing.Phone, req.User.Phone},
		{"fam", existing.Fam, req.User.Fam},
		{"name", existing.Name, req.User.Name},
		{"otc", existing.Otc, req.User.Otc},
	} {
		if f.prev != f.next {
			changed = append(changed, f.name)
		}
	}
	if len(changed) > 0 {
		return &dto.UpdateResult{
			State:   0,
			Message: "Редактирование защищенных полей пользователя запрещено: " + strings.Join(changed, ", "),
		}, nil
	}

	tx, err := DB.Begin()
	if err != nil {
		return nil, fmt.Errorf("ошибка начала транзакции UpdateMountainPass: %w", err)
	}
	defer tx.Rollback()

	// Обновляем поля перевала (без изменения user_id и статуса).
	res, err := tx.Exec(`
		UPDATE mountain_passes
		SET beauty_title = ?, title = ?, other_titles = ?, connect = ?,
		    latitude = ?, longitude = ?, height = ?, update_time = ?
		WHERE id = ?
	`,
		req.BeautyTitle, req.Title, req.OtherTitles, req.Connect,
		*req.Coords.Latitude, *req.Coords.Longitude, *req.Coords.Height,
		nowString(), passID,
	)
	if err != nil {
		return nil, fmt.Errorf("ошибка обновления перевала %d: %w", passID, err)
	}
	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("ошибка получения rowsAffected в UpdateMountainPass для ID %d: %w", passID, err)
	}
	if rowsAffected == 0 {
		// Перевал исчез между проверкой и обновлением.
		return &dto.UpdateResult{State: 0, Message: fmt.Sprintf("Перевал с ID %d не найден", passID)}, nil
	}

	// Заменяем категории сложности, если они присутствуют в запросе.
	if req.Level != nil {
		if _, err = tx.Exec("DELETE FROM difficulty_levels WHERE pass_id = ?", passID); err != nil {
			return nil, fmt.Errorf("ошибка удаления категорий сложности перевала %d: %w", passID, err)
		}
		if err = upsertLevels(tx, passID, req.Level); err != nil {
			return nil, err
		}
	}

	// Заменяем фотографии, если они присутствуют в запросе.
	if req.Images != nil {
		if _, err = tx.Exec("DELETE FROM images WHERE pass_id = ?", passID); err != nil {
			return nil, fmt.Errorf("ошибка удаления фотографий перевала %d: %w", passID, err)
		}
		if err = insertImages(tx, passID, req.Images); err != nil {
			return nil, err
		}
	}

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("ошибка фиксации транзакции UpdateMountainPass: %w", err)
	}

	log.Printf("Перевал с ID %d успешно обновлен", passID)
	return &dto.UpdateResult{State: 1, Message: "Запись успешно обновлена"}, nil
}

// DeleteUser удаляет отправителя по ID. Все его перевалы, а также их категории
// сложности и фотографии, удаляются каскадно самой базой данных
// (внешние ключи с ON DELETE CASCADE).
func DeleteUser(userID int64) error {
	res, err := DB.Exec("DELETE FROM users WHERE id = ?", userID)
	if err != nil {
		return fmt.Errorf("ошибка удаления пользователя %d: %w", userID, err)
	}
	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("ошибка получения rowsAffected в DeleteUser для ID %d: %w", userID, err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("пользователь с ID %d не найден", userID)
	}
	log.Printf("Пользователь с ID %d удален (вместе с его перевалами).", userID)
	return nil
}
