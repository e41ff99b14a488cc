package indicator

import (
	"strconv"
	"strings"
)

// Отступы от края экрана, снизу учитывается панель задач.
const (
	marginRight  = 20
	marginBottom = 60
)

// cornerPosition координаты окна в правом нижнем углу экрана.
func cornerPosition(screenWidth, screenHeight, width, height int) (x, y int) {
	return max(screenWidth-width-marginRight, 0), max(screenHeight-height-marginBottom, 0)
}

// parseGeometry разбирает вывод "xdotool getdisplaygeometry": "1920 1080".
func parseGeometry(s string) (width, height int) {
	parts := strings.Fields(s)
	if len(parts) != 2 {
		return 0, 0
	}
	width, err1 := strconv.Atoi(parts[0])
	height, err2 := strconv.Atoi(parts[1])
	if err1 != nil || err2 != nil {
		return 0, 0
	}
	return width, height
}
