package timejitter

import (
	"math/rand"
	"time"
)

func Milliseconds(d time.Duration, jitterInMilliseconds int) time.Duration {
	n := rand.Intn(jitterInMilliseconds)
	return d + time.Duration(n)*time.Millisecond
}
