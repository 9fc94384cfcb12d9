package utils

import (
	"fmt"
	"math/rand"

	"golang.org/x/crypto/bcrypt"

	"github.com/arbeit-hub/attendance-manager/backend/internal/domain"
)

// 姓と名は漢字とローマ字をペアで持つ。ユーザー名はローマ字から組み立てる
var commonSurnames = [][2]string{
	{"佐藤", "sato"}, {"鈴木", "suzuki"}, {"高橋", "takahashi"}, {"田中", "tanaka"},
	{"伊藤", "ito"}, {"渡辺", "watanabe"}, {"山本", "yamamoto"}, {"中村", "nakamura"},
	{"小林", "kobayashi"}, {"加藤", "kato"}, {"吉田", "yoshida"}, {"山田", "yamada"},
	{"佐々木", "sasaki"}, {"松本", "matsumoto"}, {"井上", "inoue"}, {"木村", "kimura"},
}

var commonGivenNames = [][2]string{
	{"翔太", "shota"}, {"健太", "kenta"}, {"大輝", "daiki"}, {"拓海", "takumi"},
	{"陽菜", "hina"}, {"美咲", "misaki"}, {"葵", "aoi"}, {"結衣", "yui"},
	{"蓮", "ren"}, {"悠斗", "yuto"}, {"さくら", "sakura"}, {"凛", "rin"},
	{"大翔", "hiroto"}, {"美優", "miyu"}, {"颯太", "sota"}, {"愛", "ai"},
}

var digits = "0123456789"

func GenerateRandomJapaneseName() (fullName string, romaji string) {
	surname := commonSurnames[rand.Intn(len(commonSurnames))]
	given := commonGivenNames[rand.Intn(len(commonGivenNames))]
	return surname[0] + " " + given[0], surname[1] + "." + given[1]
}

var roles = []domain.Role{
	domain.RoleStudent,
	domain.RoleStudent,
	domain.RoleStudent,
	domain.RoleDepartmentManager,
}

func GenerateRandomRole() domain.Role {
	return roles[rand.Intn(len(roles))]
}

func GenerateRandomUser(password string, emailDomainName string) (*domain.User, error) {
	fullName, romaji := GenerateRandomJapaneseName()

	username := romaji
	digitsLength := rand.Intn(3) + 1
	for i := 0; i < digitsLength; i++ {
		username += string(digits[rand.Intn(len(digits))])
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		Username:     username,
		PasswordHash: string(passwordHash),
		FullName:     fullName,
		Email:        username + "@" + emailDomainName,
		Role:         GenerateRandomRole(),
	}

	return user, nil
}

func GenerateRandomOTP() string {
	return fmt.Sprintf("%06d", rand.Intn(1000000))
}

var letters = []rune("abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789!@#$%^&*")

func GenerateRandomPassword(length int) string {
	random_password := make([]rune, length)
	for i := range random_password {
		random_password[i] = letters[rand.Intn(len(letters))]
	}
	return string(random_password)
}

// 平日のアルバイトらしい時間帯からランダムに選ぶ。
// 週の上限に収まりやすいよう 1 コマは 3〜4 時間に抑える
var workSlots = [][2]string{
	{"09:00", "12:00"},
	{"10:00", "13:00"},
	{"13:00", "17:00"},
	{"14:00", "18:00"},
	{"17:00", "21:00"},
	{"18:00", "22:00"},
}

func GenerateRandomWorkSlot() (start string, end string) {
	slot := workSlots[rand.Intn(len(workSlots))]
	return slot[0], slot[1]
}
