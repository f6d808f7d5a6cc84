package index

import "github.com/sirupsen/logrus"

var log = logrus.WithField("module", "index")
