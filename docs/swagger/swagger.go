// Package swagger Navigation Bridge API.
//
// Сервис-мост между хост-приложением и навигационной поверхностью.
// Принимает команды построения маршрута и управления навигационной сессией,
// запрашивает маршруты у Mapbox Directions API и транслирует события
// навигации подписчику через WebSocket.
//
// Основные возможности:
// - Построение маршрута по списку путевых точек
// - Запуск, перестроение и завершение навигационной сессии
// - Отслеживание прогресса по маршруту и детекция прибытия
// - Управление режимом камеры (following / overview)
// - Поток событий навигации через WebSocket
//
//	Schemes: http, https
//	BasePath: /
//	Version: 1.0.0
//
//	Consumes:
//	- application/json
//
//	Produces:
//	- application/json
//
// swagger:meta
package swagger
