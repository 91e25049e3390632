package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/codeclash/codeclash-backend/internal/service"
)

// DirectoryHandler 로비 화면용 읽기 전용 조회
//
// connection_established 스냅샷과 동일한 데이터를 REST로 노출한다.
type DirectoryHandler struct {
	presence *service.PresenceRegistry
	rooms    *service.RoomService
}

// NewDirectoryHandler DirectoryHandler 생성
func NewDirectoryHandler(presence *service.PresenceRegistry, rooms *service.RoomService) *DirectoryHandler {
	return &DirectoryHandler{
		presence: presence,
		rooms:    rooms,
	}
}

// ListRooms 공개 방 목록
func (h *DirectoryHandler) ListRooms(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"rooms": h.rooms.List(),
	})
}

// ListOnline 접속 사용자 목록
func (h *DirectoryHandler) ListOnline(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"users": h.presence.ListOnline(),
	})
}
