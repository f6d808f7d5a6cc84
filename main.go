package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"git.fiblab.net/sim/scenario/config"
	"git.fiblab.net/sim/scenario/engine"
	"git.fiblab.net/sim/scenario/query"
	"git.fiblab.net/sim/scenario/query/street"
	"git.fiblab.net/sim/scenario/scenario"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	easy "github.com/t-tomalak/logrus-easy-formatter"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"
)

const (
	MODE_SHELL     = "shell"
	MODE_SERVE     = "serve"
	MODE_BENCHMARK = "benchmark"
)

var (
	// 配置信息
	networkPathStr = flag.String("network", "", "transit network snapshot [format: {fspath} or {db}.{col}]")
	mongoURI       = flag.String("mongo_uri", "", "mongo db uri (default $MONGO_URI)")
	cacheDir       = flag.String("cache", "", "input cache dir path (empty means disable cache)")
	osmPath        = flag.String("osm", "", "OSM file (.osm or .pbf) for walking access, empty means straight-line distance")
	configPath     = flag.String("config", "", "yaml config file, empty means defaults")
	listen         = flag.String("listen", "", "connect listening address, overrides the config file")
	mode           = flag.String("mode", MODE_SHELL, "run mode [shell, serve, benchmark]")
	logLevel       = flag.String("log-level", "info", "log level [debug, info, warn, error, fatal, panic]")

	// 性能测试
	pprofAddr = flag.String("pprof", "", "pprof listening address, empty means disabled")

	LOG_LEVELS = map[string]logrus.Level{
		"debug": logrus.DebugLevel,
		"info":  logrus.InfoLevel,
		"warn":  logrus.WarnLevel,
		"error": logrus.ErrorLevel,
		"fatal": logrus.FatalLevel,
		"panic": logrus.PanicLevel,
	}
)

func main() {
	logrus.SetFormatter(&easy.Formatter{
		TimestampFormat: "2006-01-02 15:04:05.0000",
		LogFormat:       "[%module%] [%time%] [%lvl%] %msg%\n",
	})
	// .env不存在时忽略
	_ = godotenv.Load()
	flag.Parse()
	if level, ok := LOG_LEVELS[*logLevel]; ok {
		logrus.SetLevel(level)
	} else {
		logrus.Fatalf("invalid log level: %s", *logLevel)
	}
	if *mongoURI == "" {
		*mongoURI = os.Getenv("MONGO_URI")
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("invalid config: %v", err)
	}
	if *listen != "" {
		cfg.Server.Listen = *listen
	}

	networkPath, err := NewPath(*networkPathStr)
	if err != nil {
		log.Fatalf("invalid network path: %s", err)
	}
	if networkPath == nil {
		log.Fatal("-network is required")
	}
	ctx := context.Background()
	base, err := loadNetwork(ctx, *mongoURI, networkPath, *cacheDir)
	if err != nil {
		log.Fatalf("%v", err)
	}

	overlay := scenario.NewOverlay(base)
	if err := cfg.ApplyScenario(overlay); err != nil {
		log.Fatalf("invalid scenario in config: %v", err)
	}

	// 未提供OSM时接驳按直线距离估计
	var streetNet query.StreetNetwork
	if *osmPath != "" {
		graph, err := street.Open(ctx, *osmPath)
		if err != nil {
			log.Fatalf("failed to load osm: %v", err)
		}
		walk := street.NewWalkNetwork(graph, base)
		log.Infof("walking network loaded: %v", walk)
		streetNet = walk
	}
	planner := query.NewPlanner(engine.New(), overlay.Stops(), streetNet, cfg.Options())
	server := NewScenarioServer(overlay, planner)
	log.Infof("scenario ready: %v", overlay)

	if *pprofAddr != "" {
		// 启动pprof
		startHTTPDebugger(*pprofAddr)
	}

	switch *mode {
	case MODE_SHELL:
		shell := NewShell(overlay, planner, os.Stdin, os.Stdout)
		if err := shell.Run(ctx); err != nil {
			log.Fatalf("shell: %v", err)
		}
	case MODE_BENCHMARK:
		// 性能测试
		runBenchmark(server)
	case MODE_SERVE:
		serve(server, cfg.Server.Listen)
	default:
		log.Fatalf("invalid mode: %s", *mode)
	}
}

func serve(server *ScenarioServer, addr string) {
	// 启动tcp监听和初始化connect服务端
	mux := http.NewServeMux()
	mux.Handle(NewScenarioServiceHandler(server))

	// 使用HTTP/2 w.o. TLS
	s := &http.Server{
		Addr:    addr,
		Handler: h2c.NewHandler(mux, &http2.Server{}),
	}

	// 优雅退出
	// 创建监听退出chan
	signalCh := make(chan os.Signal, 1)
	//监听指定信号 ctrl+c kill
	signal.Notify(signalCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-signalCh
		log.Info("stopping...")
		go func() {
			<-signalCh
			os.Exit(1) // 强制结束
		}()
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.Shutdown(ctx)
	}()

	log.Infof("server listening at %v", s.Addr)
	if err := s.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("failed to serve: %v", err)
	}
	time.Sleep(1 * time.Second) // 延迟等待"优雅退出"
	log.Info("scenario service closes")
}
