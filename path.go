package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"git.fiblab.net/sim/scenario/network"
	"go.mongodb.org/mongo-driver/mongo"
)

// Path 网络数据来源：本地快照文件或{db}.{col}集合
type Path struct {
	File string
	DB   string
	Coll string
}

func NewPath(filePathOrColl string) (*Path, error) {
	// 检查filePathOrColl是否作为文件存在
	if _, err := os.Stat(filePathOrColl); err == nil {
		return &Path{
			File: filePathOrColl,
		}, nil
	}
	dbDotColl := strings.TrimSpace(filePathOrColl)
	if dbDotColl == "" {
		return nil, nil
	}
	splitted := strings.Split(dbDotColl, ".")
	if len(splitted) != 2 || splitted[0] == "" || splitted[1] == "" {
		return nil, fmt.Errorf("dbDotColl is invalid: %s", dbDotColl)
	}
	return &Path{
		DB:   splitted[0],
		Coll: splitted[1],
	}, nil
}

func (p *Path) GetCacheName() string {
	return p.DB + "." + p.Coll + ".bson"
}

func (p *Path) String() string {
	if p.File != "" {
		return p.File
	}
	return p.DB + "." + p.Coll
}

// 读取基础网络；集合来源时优先使用cacheDir下的缓存
func loadNetwork(ctx context.Context, mongoURI string, p *Path, cacheDir string) (*network.Network, error) {
	var snapshot *network.Snapshot
	var err error
	if p.File != "" {
		path, absErr := filepath.Abs(p.File)
		if absErr != nil {
			return nil, absErr
		}
		snapshot, err = network.ReadSnapshotFile(path)
	} else {
		var client *mongo.Client
		defer func() {
			if client != nil {
				client.Disconnect(context.Background())
			}
		}()
		snapshot, err = network.LoadWithCache(cacheDir, p.GetCacheName(), func() (*network.Snapshot, error) {
			var err error
			if client, err = network.NewMongoClient(ctx, mongoURI); err != nil {
				return nil, err
			}
			log.Infof("download network from %s", p)
			return network.DownloadSnapshot(ctx, client.Database(p.DB).Collection(p.Coll))
		})
	}
	if err != nil {
		return nil, fmt.Errorf("load network from %s: %w", p, err)
	}
	n, err := network.FromSnapshot(snapshot)
	if err != nil {
		return nil, fmt.Errorf("build network from %s: %w", p, err)
	}
	log.Infof("network loaded: %v", n)
	return n, nil
}
