package gormrepo

import (
	"context"

	"go.uber.org/zap"

	"user-console/internal/domain/user"
)

// SeedUsers is the starter data set loaded into an empty users table.
var SeedUsers = []user.User{
	{Name: "Leanne Graham", Email: "Sincere@april.biz", Company: user.Company{Name: "Romaguera-Crona"}},
	{Name: "Ervin Howell", Email: "Shanna@melissa.tv", Company: user.Company{Name: "Deckow-Crist"}},
	{Name: "Clementine Bauch", Email: "Nathan@yesenia.net", Company: user.Company{Name: "Romaguera-Jacobson"}},
	{Name: "Patricia Lebsack", Email: "Julianne.OConner@kory.org", Company: user.Company{Name: "Robel-Corkery"}},
	{Name: "Chelsey Dietrich", Email: "Lucio_Hettinger@annie.ca", Company: user.Company{Name: "Keebler LLC"}},
	{Name: "Mrs. Dennis Schulist", Email: "Karley_Dach@jasper.info", Company: user.Company{Name: "Considine-Lockman"}},
	{Name: "Kurtis Weissnat", Email: "Telly.Hoeger@billy.biz", Company: user.Company{Name: "Johns Group"}},
	{Name: "Nicholas Runolfsdottir V", Email: "Sherwood@rosamond.me", Company: user.Company{Name: "Abernathy Group"}},
	{Name: "Glenna Reichert", Email: "Chaim_McDermott@dana.io", Company: user.Company{Name: "Yost and Sons"}},
	{Name: "Clementina DuBuque", Email: "Rey.Padberg@karina.biz", Company: user.Company{Name: "Hoeger LLC"}},
}

// Seed inserts users when the table is empty. It returns how many were added.
func (r *UserRepo) Seed(ctx context.Context, users []user.User) (int, error) {
	n, err := r.Count(ctx)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		r.log.Debug("users table not empty, skipping seed", zap.Int64("count", n))
		return 0, nil
	}

	for i := range users {
		if _, err := r.Create(ctx, &users[i]); err != nil {
			return i, err
		}
	}
	r.log.Info("seeded users table", zap.Int("count", len(users)))
	return len(users), nil
}
