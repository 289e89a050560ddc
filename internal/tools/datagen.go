package tools

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/google/uuid"

	"inkwell/internal/apperr"
)

const MaxGenerateCount = 100

var (
	surnames   = []string{"王", "李", "张", "刘", "陈", "杨", "赵", "黄", "周", "吴"}
	givenNames = []string{"伟", "芳", "娜", "敏", "静", "磊", "洋", "艳", "勇", "杰", "婷", "强"}
	firstNames = []string{"alex", "sam", "jordan", "taylor", "casey", "morgan", "riley", "jamie"}
	domains    = []string{"example.com", "example.org", "example.net"}
	// 国内手机号段
	phonePrefixes = []string{"130", "131", "132", "155", "156", "186", "138", "139", "150", "188"}
)

type DataKind string

const (
	KindUUID  DataKind = "uuid"
	KindName  DataKind = "name"
	KindEmail DataKind = "email"
	KindPhone DataKind = "phone"
	KindIPv4  DataKind = "ipv4"
)

// GenerateData returns count fake values of kind. A non-zero seed makes the output
// reproducible (uuid excepted).
func GenerateData(kind DataKind, count int, seed int64) ([]string, error) {
	if count < 1 || count > MaxGenerateCount {
		return nil, apperr.Validation("数量需在 1 到 100 之间")
	}
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rnd := rand.New(rand.NewSource(seed))

	var gen func() string
	switch kind {
	case KindUUID:
		gen = uuid.NewString
	case KindName:
		gen = func() string {
			return surnames[rnd.Intn(len(surnames))] + givenNames[rnd.Intn(len(givenNames))]
		}
	case KindEmail:
		gen = func() string {
			return fmt.Sprintf("%s%d@%s", firstNames[rnd.Intn(len(firstNames))], rnd.Intn(1000), domains[rnd.Intn(len(domains))])
		}
	case KindPhone:
		gen = func() string {
			var b strings.Builder
			b.WriteString(phonePrefixes[rnd.Intn(len(phonePrefixes))])
			for i := 0; i < 8; i++ {
				b.WriteByte(byte('0' + rnd.Intn(10)))
			}
			return b.String()
		}
	case KindIPv4:
		gen = func() string {
			return fmt.Sprintf("%d.%d.%d.%d", 1+rnd.Intn(223), rnd.Intn(256), rnd.Intn(256), 1+rnd.Intn(254))
		}
	default:
		return nil, apperr.Validation("不支持的数据类型")
	}

	out := make([]string, count)
	for i := range out {
		out[i] = gen()
	}
	return out, nil
}
