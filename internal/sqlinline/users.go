package sqlinline

const QInsertUser = `--sql 57900655-03a3-4913-9827-92f4b49c7ee2
insert into users(email, password_hash, created_at)
values ($1::text, $2::text, now())
on conflict (email) do nothing
returning created_at;
`

const QSelectUserByEmail = `--sql 80bfc952-0102-491a-aa16-a350de762193
select email, password_hash, created_at
from users
where email = $1::text;
`

const QDeleteUser = `--sql 273d2b53-fa0f-4dd6-9dff-202bb3730bb5
delete from users
where email = $1::text;
`
