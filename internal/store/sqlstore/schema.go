package sqlstore

const sqliteSchema = `
create table if not exists users (
	id          text primary key,
	external_id text not null unique,
	email       text not null unique,
	name        text not null default '',
	picture     text,
	created_at  timestamp not null default current_timestamp
);

create table if not exists entries (
	id         integer primary key autoincrement,
	user_id    text not null,
	date       text not null,
	content    text not null,
	created_at timestamp not null default current_timestamp,
	updated_at timestamp not null default current_timestamp,
	unique (user_id, date)
);

create index if not exists idx_entries_user_updated on entries(user_id, updated_at desc);
`

const postgresSchema = `
create table if not exists users (
	id          text primary key,
	external_id text not null unique,
	email       text not null unique,
	name        text not null default '',
	picture     text,
	created_at  timestamptz not null default now()
);

create table if not exists entries (
	id         bigserial primary key,
	user_id    text not null,
	date       varchar(10) not null,
	content    text not null,
	created_at timestamptz not null default now(),
	updated_at timestamptz not null default now(),
	unique (user_id, date)
);

create index if not exists idx_entries_user_updated on entries(user_id, updated_at desc);
`
