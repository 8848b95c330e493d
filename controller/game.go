package controller

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"

	"go-city/dto"
	"go-city/service"

	"github.com/gin-gonic/gin"
)

type GameController struct {
	svc *service.GameService
}

func NewGameController(svc *service.GameService) *GameController {
	return &GameController{svc: svc}
}

// GetGameState GET /api/game-state
func (gc *GameController) GetGameState(c *gin.Context) {
	state, err := gc.svc.GetState(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, state)
}

// UpdateGameState POST /api/game-state，只覆盖类型合法的字段
func (gc *GameController) UpdateGameState(c *gin.Context) {
	body, err := bindObject(c)
	if err != nil {
		rejectBody(c, err)
		return
	}

	state, err := gc.svc.UpdateState(c.Request.Context(), dto.ParseUpdateStateRequest(body))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, state)
}

// PlaceBuilding POST /api/place-building
func (gc *GameController) PlaceBuilding(c *gin.Context) {
	body, err := bindObject(c)
	if err != nil {
		rejectBody(c, err)
		return
	}

	state, err := gc.svc.PlaceBuilding(c.Request.Context(), dto.ParsePlaceBuildingBody(body))
	if err != nil {
		var ruleErr *service.RuleError
		if errors.As(err, &ruleErr) {
			c.JSON(http.StatusBadRequest, gin.H{"error": ruleErr.Message})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, state)
}

// maxBodyBytes 请求体大小上限
const maxBodyBytes = 1 << 20

// bindObject 把请求体解析为 JSON 对象。空请求体、null 以及数组等非对象 JSON 都视为 {}
func bindObject(c *gin.Context) (map[string]interface{}, error) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBodyBytes)
	raw, err := c.GetRawData()
	if err != nil {
		return nil, err
	}
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return map[string]interface{}{}, nil
	}
	var decoded interface{}
	decoder := json.NewDecoder(bytes.NewReader(raw))
	decoder.UseNumber()
	if err := decoder.Decode(&decoded); err != nil {
		return nil, err
	}
	if decoder.More() {
		return nil, errors.New("请求体包含多个 JSON 值")
	}
	body, ok := decoded.(map[string]interface{})
	if !ok {
		return map[string]interface{}{}, nil
	}
	return body, nil
}

func rejectBody(c *gin.Context, err error) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "Request body too large"})
		return
	}
	c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
}
