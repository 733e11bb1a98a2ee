package library

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/nao1215/library/internal/model"
	"github.com/nao1215/library/internal/store"
	"github.com/nao1215/library/pkg/apierror"
	"github.com/nao1215/library/pkg/event"
)

// nullCategory はフロントエンドがカテゴリ未選択時に送る値。絞り込みなしとして扱う。
const nullCategory = "null"

// handleListBooks は書籍一覧を返すハンドラを返す。
// クエリパラメータcategoryが指定された場合はジャンルで絞り込む。
func (s *Server) handleListBooks() gin.HandlerFunc {
	return func(c *gin.Context) {
		category := c.Query("category")
		if category == nullCategory {
			category = ""
		}
		s.listBooks(c, store.BookFilter{Category: category})
	}
}

// handleListHostBooks は指定したメールアドレスのユーザーが登録した書籍一覧を返すハンドラを返す。
func (s *Server) handleListHostBooks() gin.HandlerFunc {
	return func(c *gin.Context) {
		s.listBooks(c, store.BookFilter{HostEmail: c.Param("email")})
	}
}

func (s *Server) listBooks(c *gin.Context, filter store.BookFilter) {
	ctx, cancel := s.dbContext(c)
	defer cancel()

	books, err := s.store.ListBooks(ctx, filter)
	if err != nil {
		s.abortStoreError(c, err, "書籍一覧の取得に失敗しました")
		return
	}
	if books == nil {
		books = []model.Book{}
	}
	c.JSON(http.StatusOK, books)
}

// handleGetBook は書籍を1件返すハンドラを返す。存在しない場合は null を返す。
func (s *Server) handleGetBook() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := bindID(c)
		if !ok {
			return
		}

		ctx, cancel := s.dbContext(c)
		defer cancel()

		book, err := s.store.FindBook(ctx, id)
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusOK, nil)
			return
		}
		if err != nil {
			s.abortStoreError(c, err, "書籍の取得に失敗しました")
			return
		}
		c.JSON(http.StatusOK, book)
	}
}

// handleCreateBook は書籍を登録するハンドラを返す。
func (s *Server) handleCreateBook() gin.HandlerFunc {
	return func(c *gin.Context) {
		var book model.Book
		if err := c.ShouldBindJSON(&book); err != nil {
			abortInvalidInput(c, err)
			return
		}
		book.CreatedAt = s.now().UTC()

		ctx, cancel := s.dbContext(c)
		defer cancel()

		id, err := s.store.InsertBook(ctx, &book)
		if err != nil {
			s.abortStoreError(c, err, "書籍の登録に失敗しました")
			return
		}

		s.emitEvent(c, id.Hex(), event.AggregateTypeBook, event.TypeBookCreated, event.BookCreatedData{
			Title:     book.Title,
			Category:  book.Category,
			HostEmail: book.Host.Email,
		})
		c.JSON(http.StatusCreated, gin.H{"insertedId": id.Hex()})
	}
}

// handleDeleteBook は書籍を削除し、削除件数を返すハンドラを返す。
// 存在しない書籍の削除はエラーにせず、削除件数0を返す。
func (s *Server) handleDeleteBook() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := bindID(c)
		if !ok {
			return
		}

		ctx, cancel := s.dbContext(c)
		defer cancel()

		deleted, err := s.store.DeleteBook(ctx, id)
		if err != nil {
			s.abortStoreError(c, err, "書籍の削除に失敗しました")
			return
		}

		if deleted > 0 {
			s.emitEvent(c, id.Hex(), event.AggregateTypeBook, event.TypeBookDeleted, event.BookDeletedData{
				DeletedCount: deleted,
			})
		}
		c.JSON(http.StatusOK, gin.H{"deletedCount": deleted})
	}
}

// bindID はパスパラメータidを識別子として解析する。不正な場合は400を返し、falseを返す。
func bindID(c *gin.Context) (bson.ObjectID, bool) {
	id, err := model.ParseID(c.Param("id"))
	if err != nil {
		_ = c.Error(err)
		apierror.Abort(c, http.StatusBadRequest, apierror.CodeInvalidID, "識別子の形式が不正です")
		return bson.NilObjectID, false
	}
	return id, true
}
