package model

import (
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// ErrInvalidID は識別子が24桁の16進文字列でないことを表す。
var ErrInvalidID = errors.New("識別子の形式が不正です")

// NewID は新しい識別子を生成する。
func NewID() bson.ObjectID {
	return bson.NewObjectID()
}

// ParseID は16進文字列の識別子をObjectIDに変換する。
// 形式が不正な場合は ErrInvalidID をラップしたエラーを返す。
func ParseID(s string) (bson.ObjectID, error) {
	id, err := bson.ObjectIDFromHex(s)
	if err != nil {
		return bson.NilObjectID, fmt.Errorf("%w: %q", ErrInvalidID, s)
	}
	return id, nil
}
