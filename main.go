package main

import (
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/spf13/viper"

	"github.com/qianlnk/werewolf-engine/models"
	"github.com/qianlnk/werewolf-engine/services"
)

var (
	upgrader = websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			return true // 允许所有跨域请求，生产环境中应该更严格
		},
	}

	runManager   *services.RunManager
	webSocketMgr *services.WebSocketManager
)

func init() {
	// 设置日志格式，包含文件名和行号
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)

	// 加载配置：默认值 < config.yaml < 环境变量
	viper.SetDefault("server.addr", ":8080")
	viper.SetDefault("engine.agent_timeout", "30s")
	viper.SetDefault("engine.discussion_rounds", 1)

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.SetEnvPrefix("werewolf")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			log.Fatalf("读取配置文件失败: %v", err)
		}
	}

	webSocketMgr = services.NewWebSocketManager()
	runManager = services.NewRunManager(webSocketMgr)

	log.Printf("初始化完成: 监听地址 %s", viper.GetString("server.addr"))
}

func main() {
	r := gin.Default()

	// 设置跨域中间件
	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Accept, Content-Type, Content-Length, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	// WebSocket事件流
	r.GET("/ws", streamEvents)

	// API路由组
	api := r.Group("/api")
	{
		api.POST("/games", createGame)
		api.GET("/games", listGames)
		api.GET("/games/:id", getGame)
		api.GET("/games/:id/events", getGameEvents)
	}

	addr := viper.GetString("server.addr")
	log.Printf("服务器启动在 %s", addr)
	if err := r.Run(addr); err != nil {
		log.Fatal("服务器启动失败:", err)
	}
}

// createGameRequest 创建对局请求
type createGameRequest struct {
	PlayerCount         int                 `json:"player_count" binding:"required"`
	Roles               map[models.Role]int `json:"roles" binding:"required"`
	PlayerNames         []string            `json:"player_names"`
	WinConditions       []string            `json:"win_conditions"`
	TiePolicy           models.TiePolicy    `json:"tie_policy"`
	Seed                int64               `json:"seed"`
	DiscussionRounds    int                 `json:"discussion_rounds"`
	AgentTimeoutSeconds int                 `json:"agent_timeout_seconds"`
}

// createGame 创建并异步运行一局游戏
func createGame(c *gin.Context) {
	var req createGameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	cfg := models.GameConfig{
		PlayerCount:      req.PlayerCount,
		Roles:            req.Roles,
		PlayerNames:      req.PlayerNames,
		WinConditions:    req.WinConditions,
		TiePolicy:        req.TiePolicy,
		Seed:             req.Seed,
		DiscussionRounds: req.DiscussionRounds,
		AgentTimeout:     time.Duration(req.AgentTimeoutSeconds) * time.Second,
	}
	if len(cfg.WinConditions) == 0 {
		cfg.WinConditions = []string{models.WinWerewolvesEliminated, models.WinWerewolfParity}
	}
	if cfg.TiePolicy == "" {
		cfg.TiePolicy = models.TieRandom
	}
	if cfg.AgentTimeout == 0 {
		cfg.AgentTimeout = viper.GetDuration("engine.agent_timeout")
	}
	if cfg.DiscussionRounds == 0 {
		cfg.DiscussionRounds = viper.GetInt("engine.discussion_rounds")
	}

	run, err := runManager.StartRun(cfg)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, run.Info())
}

func listGames(c *gin.Context) {
	runs := runManager.ListRuns()
	infos := make([]services.RunInfo, 0, len(runs))
	for _, run := range runs {
		infos = append(infos, run.Info())
	}
	c.JSON(http.StatusOK, gin.H{"games": infos})
}

func getGame(c *gin.Context) {
	run, err := runManager.GetRun(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, run.Info())
}

func getGameEvents(c *gin.Context) {
	run, err := runManager.GetRun(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"events": run.Events()})
}

// streamEvents 升级WebSocket连接并订阅对局事件流
func streamEvents(c *gin.Context) {
	runID := c.Query("game")
	if runID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "缺少game参数"})
		return
	}

	run, err := runManager.GetRun(runID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}

	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("升级WebSocket连接失败: %v", err)
		return
	}

	webSocketMgr.Subscribe(runID, ws, run.Events)
}
