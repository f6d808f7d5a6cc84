package network

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/samber/lo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// 网络快照，作为数据库文档与本地缓存文件的格式

type StopDoc struct {
	Index int     `bson:"index"`
	Name  string  `bson:"name"`
	Lat   float64 `bson:"lat"`
	Lon   float64 `bson:"lon"`
}

type TripDoc struct {
	TripID     string `bson:"trip_id"`
	Arrivals   []int  `bson:"arrivals"`
	Departures []int  `bson:"departures"`
}

type RouteDoc struct {
	Index     int       `bson:"index"`
	RouteID   string    `bson:"route_id"`
	ShortName string    `bson:"short_name"`
	LongName  string    `bson:"long_name"`
	Type      RouteType `bson:"type"`
	Stops     []int     `bson:"stops"`
	Trips     []TripDoc `bson:"trips"`
}

type TransferDoc struct {
	From     int `bson:"from"`
	To       int `bson:"to"`
	Duration int `bson:"duration"`
}

type ServiceDoc struct {
	Start int `bson:"start"`
	End   int `bson:"end"`
}

type Snapshot struct {
	Stops     []StopDoc     `bson:"stops"`
	Routes    []RouteDoc    `bson:"routes"`
	Transfers []TransferDoc `bson:"transfers"`
	Service   *ServiceDoc   `bson:"service,omitempty"`
}

// 集合中的每个文档形如 {class: "stop"|"route"|"transfer"|"service", data: {...}}
type classDoc struct {
	Class string   `bson:"class"`
	Data  bson.Raw `bson:"data"`
}

const (
	CLASS_STOP     = "stop"
	CLASS_ROUTE    = "route"
	CLASS_TRANSFER = "transfer"
	CLASS_SERVICE  = "service"
)

func NewMongoClient(ctx context.Context, uri string) (*mongo.Client, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	return client, nil
}

// 从集合下载网络快照
func DownloadSnapshot(ctx context.Context, coll *mongo.Collection) (*Snapshot, error) {
	cursor, err := coll.Find(ctx, bson.D{})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)
	s := &Snapshot{}
	errs := make([]error, 0)
	for cursor.Next(ctx) {
		var doc classDoc
		if err := cursor.Decode(&doc); err != nil {
			errs = append(errs, err)
			continue
		}
		switch doc.Class {
		case CLASS_STOP:
			var v StopDoc
			err = bson.Unmarshal(doc.Data, &v)
			s.Stops = append(s.Stops, v)
		case CLASS_ROUTE:
			var v RouteDoc
			err = bson.Unmarshal(doc.Data, &v)
			s.Routes = append(s.Routes, v)
		case CLASS_TRANSFER:
			var v TransferDoc
			err = bson.Unmarshal(doc.Data, &v)
			s.Transfers = append(s.Transfers, v)
		case CLASS_SERVICE:
			var v ServiceDoc
			err = bson.Unmarshal(doc.Data, &v)
			s.Service = &v
		default:
			err = fmt.Errorf("%w: %q", ErrUnknownClass, doc.Class)
		}
		if err != nil {
			errs = append(errs, err)
		}
	}
	if err := cursor.Err(); err != nil {
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	sort.Slice(s.Stops, func(i, j int) bool { return s.Stops[i].Index < s.Stops[j].Index })
	sort.Slice(s.Routes, func(i, j int) bool { return s.Routes[i].Index < s.Routes[j].Index })
	return s, nil
}

func ReadSnapshotFile(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	s := &Snapshot{}
	if err := bson.Unmarshal(data, s); err != nil {
		return nil, fmt.Errorf("decode snapshot %s: %w", path, err)
	}
	return s, nil
}

func WriteSnapshotFile(path string, s *Snapshot) error {
	data, err := bson.Marshal(s)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// 优先读取cacheDir下的缓存文件，不存在时调用download并写入缓存；cacheDir为空表示不使用缓存
func LoadWithCache(cacheDir, cacheName string, download func() (*Snapshot, error)) (*Snapshot, error) {
	if cacheDir == "" {
		return download()
	}
	cachePath := filepath.Join(cacheDir, cacheName)
	if s, err := ReadSnapshotFile(cachePath); err == nil {
		log.Infof("load network from cache %s", cachePath)
		return s, nil
	} else if !errors.Is(err, os.ErrNotExist) {
		log.Warnf("ignore broken cache %s: %v", cachePath, err)
	}
	s, err := download()
	if err != nil {
		return nil, err
	}
	if err := WriteSnapshotFile(cachePath, s); err != nil {
		log.Warnf("failed to write cache %s: %v", cachePath, err)
	}
	return s, nil
}

// 由快照构造网络，站点与线路顺序即其下标
func FromSnapshot(s *Snapshot) (*Network, error) {
	b := NewBuilder()
	for _, stop := range s.Stops {
		b.AddStop(stop.Name, stop.Lat, stop.Lon)
	}
	for _, doc := range s.Routes {
		route := &Route{
			Pattern: TripPattern{
				StopIndexes: doc.Stops,
				SlackIndex:  doc.Type.SlackClass(),
				DebugInfo:   doc.Type.String() + "_" + doc.ShortName,
			},
			RouteID:   doc.RouteID,
			ShortName: doc.ShortName,
			LongName:  doc.LongName,
			Type:      doc.Type,
		}
		route.Timetable = lo.Map(doc.Trips, func(t TripDoc, _ int) *TripSchedule {
			sortIndex := 0
			if len(t.Departures) > 0 {
				sortIndex = t.Departures[0]
			}
			return &TripSchedule{
				SortIndex:      sortIndex,
				Arrivals:       t.Arrivals,
				Departures:     t.Departures,
				TripID:         t.TripID,
				RouteShortName: doc.ShortName,
			}
		})
		b.AddRoute(route)
	}
	for _, t := range s.Transfers {
		b.AddDirectedTransfer(Transfer{FromStop: t.From, ToStop: t.To, DurationSeconds: t.Duration})
	}
	if s.Service != nil {
		b.SetServiceTime(s.Service.Start, s.Service.End)
	}
	return b.Build()
}

// 网络导出为快照
func (n *Network) Snapshot() *Snapshot {
	s := &Snapshot{
		Service: &ServiceDoc{Start: n.serviceStart, End: n.serviceEnd},
	}
	for i := range n.stopNames {
		s.Stops = append(s.Stops, StopDoc{Index: i, Name: n.stopNames[i], Lat: n.stopLats[i], Lon: n.stopLons[i]})
	}
	for i, route := range n.routes {
		s.Routes = append(s.Routes, RouteDoc{
			Index:     i,
			RouteID:   route.RouteID,
			ShortName: route.ShortName,
			LongName:  route.LongName,
			Type:      route.Type,
			Stops:     route.Pattern.StopIndexes,
			Trips: lo.Map(route.Timetable, func(t *TripSchedule, _ int) TripDoc {
				return TripDoc{TripID: t.TripID, Arrivals: t.Arrivals, Departures: t.Departures}
			}),
		})
	}
	for _, transfers := range n.transfersFrom {
		for _, t := range transfers {
			s.Transfers = append(s.Transfers, TransferDoc{From: t.FromStop, To: t.ToStop, Duration: t.DurationSeconds})
		}
	}
	return s
}
